package topics

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// GlamourRenderer renders markdown topics for the terminal
type GlamourRenderer struct {
	Style string // "auto", a standard style name ("dark", "light", "notty") or a style file path
	Width int    // Word wrap width (0 = glamour default)
}

// NewGlamourRenderer creates a markdown renderer with auto-detected style
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

// Render converts markdown to terminal output. Anything else, and any
// rendering failure, returns content unchanged.
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	switch {
	case r.Style == "" || r.Style == "auto":
		options = append(options, glamour.WithAutoStyle())
	case isStandardStyle(r.Style):
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func isStandardStyle(name string) bool {
	_, ok := styles.DefaultStyles[name]
	return ok
}
