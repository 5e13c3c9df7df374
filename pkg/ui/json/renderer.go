// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/ui/display"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}
}

// RenderRun renders every outcome, including unchanged and cached files
func (r *Renderer) RenderRun(report *display.RunReport) error {
	return r.encoder.Encode(report.View())
}

// RenderMatches renders the matching commands
func (r *Renderer) RenderMatches(report *display.MatchReport) error {
	return r.encoder.Encode(report.View())
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

// RenderError renders an error as JSON, with its code and details when it
// carries them
func (r *Renderer) RenderError(err error) error {
	obj := map[string]interface{}{"error": err.Error()}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		obj["code"] = string(code)
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return r.encoder.Encode(obj)
}
