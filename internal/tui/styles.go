// Package tui renders run progress and results for the terminal.
package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles used for terminal output.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Subtle  lipgloss.Style
	Accent  lipgloss.Style
}

// NewStyles builds styles whose color profile matches w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFB454")),
		Subtle: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		Accent: r.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")),
	}
}
