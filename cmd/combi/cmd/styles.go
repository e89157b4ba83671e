package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#10B981")
	colorAccent  = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// styles are bound to one output so colors are dropped when it is not a
// terminal.
type styles struct {
	Title   lipgloss.Style
	Formula lipgloss.Style
	Muted   lipgloss.Style
	Result  lipgloss.Style
	Error   lipgloss.Style
	Output  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		Formula: r.NewStyle().
			Foreground(colorAccent).
			PaddingLeft(2),
		Muted: r.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(4),
		Result: r.NewStyle().
			Bold(true).
			Foreground(colorSuccess),
		Error: r.NewStyle().
			Foreground(colorError),
		Output: r.NewStyle().
			Foreground(colorMuted),
	}
}
