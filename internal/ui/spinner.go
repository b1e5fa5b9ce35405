package ui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Spinner shows progress for a blocking step. Stop is safe to call more than once.
type Spinner struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	stopped bool
}

type stopMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.stopped {
		return ""
	}
	return m.spinner.View() + " " + m.message
}

// StartSpinner shows message with an animated spinner until Stop is called.
// Without a terminal the message is printed once.
func (u *UI) StartSpinner(message string) *Spinner {
	s := &Spinner{done: make(chan struct{})}

	if !u.interactive {
		fmt.Fprintln(u.out, u.muted.Render(message))
		close(s.done)
		return s
	}

	model := spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(u.muted)),
		message: message,
	}
	s.program = tea.NewProgram(model,
		tea.WithOutput(u.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	go func() {
		defer close(s.done)
		_, _ = s.program.Run()
	}()
	return s
}

// Stop clears the spinner line and waits for it to finish
func (s *Spinner) Stop() {
	s.once.Do(func() {
		if s.program != nil {
			s.program.Send(stopMsg{})
		}
		<-s.done
	})
}
