package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns utterance markup into terminal output.
type Renderer func(markup string) (string, error)

// NewRenderer returns a glamour renderer with automatic light/dark detection.
// When glamour cannot be initialised the markup is returned as plain text.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return PlainRenderer
	}
	return func(markup string) (string, error) {
		out, err := r.Render(markup)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n"), nil
	}
}

// PlainRenderer returns the markup unchanged. Used when stdout is not a terminal.
func PlainRenderer(markup string) (string, error) {
	return markup, nil
}
