// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/execfmt/pkg/ui/display"
	"github.com/arthur-debert/execfmt/pkg/ui/styles"
	"github.com/arthur-debert/execfmt/pkg/workspace"
)

// Renderer writes styled output for interactive terminals.
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderRun prints one styled line per listed file and a summary.
func (r *Renderer) RenderRun(report *display.RunReport) error {
	for _, o := range report.Listed() {
		line := styles.ForStatus(o.Status).Render(string(o.Status)) + " " + o.Path
		if o.Elapsed >= time.Second {
			line += " " + styles.GetStyle("Muted").Render(o.Elapsed.Round(time.Millisecond).String())
		}
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
		if o.Err != nil {
			if _, err := fmt.Fprintln(r.output, "  "+styles.GetStyle("Error").Render(o.Err.Error())); err != nil {
				return err
			}
		}
	}

	summary := styles.GetStyle(summaryStyle(report.Summary)).Render(report.SummaryLine())
	_, err := fmt.Fprintln(r.output, summary)
	return err
}

func summaryStyle(s workspace.Summary) string {
	switch {
	case s.Failed > 0:
		return "Error"
	case s.WouldChange > 0:
		return "Warning"
	default:
		return "Success"
	}
}

// RenderMatches prints the matching commands as a table.
func (r *Renderer) RenderMatches(report *display.MatchReport) error {
	header := styles.GetStyle("Header").Render(report.Path)
	if len(report.Commands) == 0 {
		_, err := fmt.Fprintln(r.output, header+" "+styles.GetStyle("Muted").Render("no command matches"))
		return err
	}

	data := pterm.TableData{{"#", "Command", "Input", "Working directory"}}
	for _, c := range report.Commands {
		input := "stdin"
		if !c.Stdin {
			input = "temp file"
		}
		data = append(data, []string{
			strconv.Itoa(c.Index),
			styles.GetStyle("Command").Render(c.Command),
			input,
			c.Cwd,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.output, "%s\n%s\n", header, table)
	return err
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.GetStyle("Info").Render(msg))
	return err
}

// RenderError renders an error with error styling
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, styles.GetStyle("Error").Render("Error: "+err.Error()))
	return werr
}
