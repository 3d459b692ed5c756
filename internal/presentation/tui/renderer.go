package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Render turns an agent reply into terminal output.
type Render func(markdown string) string

// NewRenderer renders markdown with glamour, wrapping at width (0 keeps glamour's default).
// Replies glamour cannot render are printed as they are.
func NewRenderer(width int) Render {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return Plain
	}
	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return Plain(markdown)
		}
		return out
	}
}

// Plain is the renderer used when stdout is not a terminal.
func Plain(markdown string) string {
	return strings.TrimRight(markdown, "\n") + "\n"
}
