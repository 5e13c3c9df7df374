package display

import (
	"github.com/arthur-debert/execfmt/pkg/errors"
)

// View converts the report for serialization. Every outcome is included.
func (r *RunReport) View() RunView {
	files := make([]OutcomeView, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		v := OutcomeView{
			Path:      o.Path,
			Status:    string(o.Status),
			ElapsedMs: o.Elapsed.Milliseconds(),
		}
		if o.Err != nil {
			v.Error = o.Err.Error()
			v.ErrorCode = string(errors.GetErrorCode(o.Err))
		}
		files = append(files, v)
	}

	s := r.Summary
	return RunView{
		Command: r.Command,
		Files:   files,
		Summary: SummaryView{
			Total:       s.Total(),
			Formatted:   s.Formatted,
			Unchanged:   s.Unchanged,
			WouldChange: s.WouldChange,
			Cached:      s.Cached,
			Failed:      s.Failed,
		},
		Timestamp: r.Timestamp,
	}
}

// View converts the report for serialization.
func (r *MatchReport) View() MatchView {
	commands := make([]CommandView, 0, len(r.Commands))
	for _, c := range r.Commands {
		commands = append(commands, CommandView{
			Index:   c.Index,
			Command: c.Command,
			Cwd:     c.Cwd,
			Stdin:   c.Stdin,
		})
	}
	return MatchView{Path: r.Path, Commands: commands}
}
