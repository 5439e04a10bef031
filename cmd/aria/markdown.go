package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// markdownRenderer renders assistant replies for the terminal.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	plain    bool
}

func newMarkdownRenderer(plain bool) (*markdownRenderer, error) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w - 4
		if width > 120 {
			width = 120
		}
	}

	style := glamour.WithStandardStyle("dark")
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("init markdown renderer: %w", err)
	}
	return &markdownRenderer{renderer: renderer, plain: plain}, nil
}

// render falls back to the raw text whenever rendering fails, so a styling
// problem never hides a reply.
func (r *markdownRenderer) render(content string) string {
	if content == "" {
		return ""
	}
	rendered, err := r.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return strings.TrimLeft(rendered, "\n")
}
