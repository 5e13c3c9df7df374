// Package ui renders command results as colored terminal output, plain
// text or JSON.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/execfmt/pkg/ui/display"
	"github.com/arthur-debert/execfmt/pkg/ui/json"
	"github.com/arthur-debert/execfmt/pkg/ui/terminal"
	"github.com/arthur-debert/execfmt/pkg/ui/text"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderRun renders the outcome of a fmt or check run
	RenderRun(report *display.RunReport) error

	// RenderMatches renders the commands matching a path
	RenderMatches(report *display.MatchReport) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error
}

// NewRenderer creates a renderer for format. FormatAuto inspects output
// when it is a file and defaults to terminal output otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatTerminal, output)
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
