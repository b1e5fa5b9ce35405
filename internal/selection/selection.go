// Package selection picks one item out of a list fetched from the API,
// prompting only when there is more than one candidate.
package selection

import (
	"context"
	"fmt"

	"github.com/catalystcommunity/edgefn/internal/prompt"
)

// Searcher shows a filterable list and returns the chosen value
type Searcher interface {
	Search(ctx context.Context, message string, choices []prompt.Choice, defaultValue string) (string, error)
}

// Options describes how items are presented
type Options[T any] struct {
	// Message is the search prompt shown when there are several items
	Message string
	// Label renders an item in the list
	Label func(T) string
	// Value is the identifier returned for an item
	Value func(T) string
	// Default is the value preselected in the list
	Default string
	// OnEmpty runs when there are no items
	OnEmpty func()
	// OnOnly runs when the single item is picked without prompting
	OnOnly func(T)
}

// SelectOne returns the single item when there is one, prompts when there
// are several, and reports ok=false when there are none.
func SelectOne[T any](ctx context.Context, s Searcher, items []T, opts Options[T]) (T, bool, error) {
	var zero T

	switch len(items) {
	case 0:
		if opts.OnEmpty != nil {
			opts.OnEmpty()
		}
		return zero, false, nil
	case 1:
		if opts.OnOnly != nil {
			opts.OnOnly(items[0])
		}
		return items[0], true, nil
	}

	choices := make([]prompt.Choice, len(items))
	for i, item := range items {
		choices[i] = prompt.Choice{Label: opts.Label(item), Value: opts.Value(item)}
	}

	value, err := s.Search(ctx, opts.Message, choices, opts.Default)
	if err != nil {
		return zero, false, err
	}

	for _, item := range items {
		if opts.Value(item) == value {
			return item, true, nil
		}
	}
	return zero, false, fmt.Errorf("selected value %q is not in the list", value)
}
