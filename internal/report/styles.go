package report

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles defines the visual theme for terminal output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Border colors the asterisks of a flower box.
	Border lipgloss.Style

	// Title is used for the heading of the interactive view.
	Title lipgloss.Style

	// Elapsed highlights the running stopwatch.
	Elapsed lipgloss.Style

	// Fail styles error messages.
	Fail lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1),
		Elapsed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40")),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
