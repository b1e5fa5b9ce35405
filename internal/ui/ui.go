package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UI prints user-facing status lines
type UI struct {
	out         io.Writer
	interactive bool

	info    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

// New creates a UI writing to out. Colors and the animated spinner are only
// used when out is a terminal.
func New(out io.Writer) *UI {
	renderer := lipgloss.NewRenderer(out)
	return &UI{
		out:         out,
		interactive: isTerminal(out),
		info:        renderer.NewStyle(),
		warn:        renderer.NewStyle().Foreground(lipgloss.Color("3")),
		err:         renderer.NewStyle().Foreground(lipgloss.Color("1")),
		success:     renderer.NewStyle().Foreground(lipgloss.Color("2")),
		muted:       renderer.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Writer returns the underlying output
func (u *UI) Writer() io.Writer {
	return u.out
}

// Info prints a plain line
func (u *UI) Info(msg string) {
	fmt.Fprintln(u.out, u.info.Render(msg))
}

// Infof prints a formatted plain line
func (u *UI) Infof(format string, args ...any) {
	u.Info(fmt.Sprintf(format, args...))
}

// Warn prints a yellow line
func (u *UI) Warn(msg string) {
	fmt.Fprintln(u.out, u.warn.Render(msg))
}

// Error prints a red line
func (u *UI) Error(msg string) {
	fmt.Fprintln(u.out, u.err.Render(msg))
}

// Success prints a green line
func (u *UI) Success(msg string) {
	fmt.Fprintln(u.out, u.success.Render(msg))
}

// Muted prints a gray line
func (u *UI) Muted(msg string) {
	fmt.Fprintln(u.out, u.muted.Render(msg))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
