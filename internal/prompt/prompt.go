package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt or input ends early
var ErrAborted = errors.New("prompt aborted")

// Choice is one selectable entry of a search prompt
type Choice struct {
	Label string
	Value string
}

// Prompter asks the user questions
type Prompter interface {
	Confirm(ctx context.Context, message string, defaultValue bool) (bool, error)
	Input(ctx context.Context, message string) (string, error)
	Search(ctx context.Context, message string, choices []Choice, defaultValue string) (string, error)
}

var _ Prompter = (*Terminal)(nil)

// Terminal prompts on a pair of streams, usually stdin and stdout
type Terminal struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminal creates a prompter reading from in and writing to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:     in,
		out:    out,
		reader: bufio.NewReader(in),
	}
}

// Confirm asks a yes/no question. An empty answer or end of input picks the default.
func (t *Terminal) Confirm(ctx context.Context, message string, defaultValue bool) (bool, error) {
	hint := "y/N"
	if defaultValue {
		hint = "Y/n"
	}

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		fmt.Fprintf(t.out, "? %s (%s) ", message, hint)
		line, err := t.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" {
				fmt.Fprintln(t.out)
				return defaultValue, nil
			}
			if !errors.Is(err, io.EOF) {
				return false, fmt.Errorf("failed to read input: %w", err)
			}
		}

		switch strings.ToLower(line) {
		case "":
			return defaultValue, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "Please answer yes or no.")
	}
}

// Input reads a single line of free text
func (t *Terminal) Input(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(t.out, "? %s ", message)
	line, err := t.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				fmt.Fprintln(t.out)
				return "", ErrAborted
			}
			return line, nil
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

// Search shows a filterable list and returns the value of the chosen entry
func (t *Terminal) Search(ctx context.Context, message string, choices []Choice, defaultValue string) (string, error) {
	return runSearch(ctx, t.searchInput(), t.out, message, choices, defaultValue)
}

// searchInput hands a terminal to the search program as is so it can switch
// to raw mode. Other inputs go through the line reader, which may already hold
// bytes read ahead by Confirm or Input.
func (t *Terminal) searchInput() io.Reader {
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return f
	}
	return t.reader
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	return strings.TrimSpace(line), err
}
