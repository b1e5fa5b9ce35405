package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalystcommunity/edgefn/internal/prompt"
)

type item struct {
	id   string
	name string
}

type fakeSearcher struct {
	answer  string
	err     error
	calls   int
	message string
	choices []prompt.Choice
	def     string
}

func (f *fakeSearcher) Search(_ context.Context, message string, choices []prompt.Choice, defaultValue string) (string, error) {
	f.calls++
	f.message = message
	f.choices = choices
	f.def = defaultValue
	return f.answer, f.err
}

func options() Options[item] {
	return Options[item]{
		Message: "Pick one:",
		Label:   func(i item) string { return i.id + " - " + i.name },
		Value:   func(i item) string { return i.id },
		Default: "2",
	}
}

func TestSelectOneEmpty(t *testing.T) {
	searcher := &fakeSearcher{}
	emptyCalled := false
	opts := options()
	opts.OnEmpty = func() { emptyCalled = true }

	got, ok, err := SelectOne(context.Background(), searcher, nil, opts)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, item{}, got)
	assert.True(t, emptyCalled)
	assert.Zero(t, searcher.calls)
}

func TestSelectOneSingle(t *testing.T) {
	searcher := &fakeSearcher{}
	var only item
	opts := options()
	opts.OnOnly = func(i item) { only = i }

	got, ok, err := SelectOne(context.Background(), searcher, []item{{"1", "one"}}, opts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, item{"1", "one"}, got)
	assert.Equal(t, got, only)
	assert.Zero(t, searcher.calls, "single item must not prompt")
}

func TestSelectOneMany(t *testing.T) {
	items := []item{{"1", "one"}, {"2", "two"}, {"3", "three"}}

	t.Run("returns the chosen item", func(t *testing.T) {
		searcher := &fakeSearcher{answer: "3"}
		got, ok, err := SelectOne(context.Background(), searcher, items, options())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, item{"3", "three"}, got)

		assert.Equal(t, 1, searcher.calls)
		assert.Equal(t, "Pick one:", searcher.message)
		assert.Equal(t, "2", searcher.def)
		assert.Equal(t, []prompt.Choice{
			{Label: "1 - one", Value: "1"},
			{Label: "2 - two", Value: "2"},
			{Label: "3 - three", Value: "3"},
		}, searcher.choices)
	})

	t.Run("prompt errors propagate", func(t *testing.T) {
		searcher := &fakeSearcher{err: prompt.ErrAborted}
		_, ok, err := SelectOne(context.Background(), searcher, items, options())
		assert.False(t, ok)
		assert.True(t, errors.Is(err, prompt.ErrAborted))
	})

	t.Run("unknown answer is an error", func(t *testing.T) {
		searcher := &fakeSearcher{answer: "9"}
		_, ok, err := SelectOne(context.Background(), searcher, items, options())
		assert.False(t, ok)
		require.Error(t, err)
	})
}
