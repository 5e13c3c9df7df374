// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/execfmt/pkg/ui/display"
)

// Renderer writes one line per file, suitable for piping into other tools.
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderRun lists files as "<status>\t<path>", followed by the error of
// failed files and a summary line.
func (r *Renderer) RenderRun(report *display.RunReport) error {
	for _, o := range report.Listed() {
		if _, err := fmt.Fprintf(r.output, "%s\t%s\n", o.Status, o.Path); err != nil {
			return err
		}
		if o.Err != nil {
			if _, err := fmt.Fprintf(r.output, "\t%v\n", o.Err); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(r.output, report.SummaryLine())
	return err
}

// RenderMatches lists matching commands as "<index>\t<command>".
func (r *Renderer) RenderMatches(report *display.MatchReport) error {
	if len(report.Commands) == 0 {
		_, err := fmt.Fprintf(r.output, "No command matches %s\n", report.Path)
		return err
	}
	for _, c := range report.Commands {
		if _, err := fmt.Fprintf(r.output, "%d\t%s\n", c.Index, c.Command); err != nil {
			return err
		}
	}
	return nil
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}
