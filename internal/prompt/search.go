package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PageSize is the number of choices visible at once
const PageSize = 30

type searchKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var defaultSearchKeys = searchKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n", "tab"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	messageStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Filter returns the choices whose label contains query, ignoring case.
// Whitespace in the query is significant. An empty query matches everything.
func Filter(choices []Choice, query string) []Choice {
	query = strings.ToLower(query)
	if query == "" {
		return choices
	}

	var matched []Choice
	for _, c := range choices {
		if strings.Contains(strings.ToLower(c.Label), query) {
			matched = append(matched, c)
		}
	}
	return matched
}

type searchModel struct {
	message  string
	input    textinput.Model
	choices  []Choice
	filtered []Choice
	cursor   int
	keys     searchKeys

	selected *Choice
	aborted  bool
}

func newSearchModel(message string, choices []Choice, defaultValue string) searchModel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type to filter"
	input.Focus()

	m := searchModel{
		message:  message,
		input:    input,
		choices:  choices,
		filtered: choices,
		keys:     defaultSearchKeys,
	}
	for i, c := range choices {
		if c.Value == defaultValue {
			m.cursor = i
			break
		}
	}
	return m
}

func (m searchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if len(m.filtered) == 0 {
				return m, nil
			}
			choice := m.filtered[m.cursor]
			m.selected = &choice
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	previous := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != previous {
		m.filtered = Filter(m.choices, m.input.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m searchModel) View() string {
	if m.selected != nil {
		return fmt.Sprintf("? %s %s\n", messageStyle.Render(m.message), selectedStyle.Render(m.selected.Label))
	}
	if m.aborted {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "? %s %s\n", messageStyle.Render(m.message), m.input.View())

	if len(m.filtered) == 0 {
		b.WriteString(faintStyle.Render("  No matches"))
		b.WriteString("\n")
		return b.String()
	}

	start := 0
	if m.cursor >= PageSize {
		start = m.cursor - PageSize + 1
	}
	end := min(start+PageSize, len(m.filtered))

	for i := start; i < end; i++ {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ " + m.filtered[i].Label))
		} else {
			b.WriteString("  " + m.filtered[i].Label)
		}
		b.WriteString("\n")
	}
	if end < len(m.filtered) {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  (%d more)", len(m.filtered)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func runSearch(ctx context.Context, in io.Reader, out io.Writer, message string, choices []Choice, defaultValue string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices to search")
	}

	program := tea.NewProgram(
		newSearchModel(message, choices, defaultValue),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to run search prompt: %w", err)
	}

	m, ok := final.(searchModel)
	if !ok || m.aborted || m.selected == nil {
		return "", ErrAborted
	}
	return m.selected.Value, nil
}
