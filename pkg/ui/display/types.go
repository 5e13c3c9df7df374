// Package display holds the results commands hand to renderers.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/workspace"
)

// RunReport is the result of formatting or checking a set of files.
type RunReport struct {
	Command  string              `json:"command"` // "fmt", "check"
	Outcomes []workspace.Outcome `json:"-"`
	Summary  workspace.Summary   `json:"-"`
	// Verbose includes unchanged and cached files in listings.
	Verbose   bool      `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRunReport summarizes outcomes for command.
func NewRunReport(command string, outcomes []workspace.Outcome) *RunReport {
	return &RunReport{
		Command:   command,
		Outcomes:  outcomes,
		Summary:   workspace.Summarize(outcomes),
		Timestamp: time.Now(),
	}
}

// Listed returns the outcomes worth showing one line for.
func (r *RunReport) Listed() []workspace.Outcome {
	var listed []workspace.Outcome
	for _, o := range r.Outcomes {
		switch o.Status {
		case workspace.StatusUnchanged, workspace.StatusCached:
			if !r.Verbose {
				continue
			}
		}
		listed = append(listed, o)
	}
	return listed
}

// MatchReport lists the commands that would run for a path.
type MatchReport struct {
	Path     string                `json:"path"`
	Commands []*config.CommandSpec `json:"-"`
}

// OutcomeView is the serializable form of an outcome.
type OutcomeView struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// SummaryView is the serializable form of a summary.
type SummaryView struct {
	Total       int `json:"total"`
	Formatted   int `json:"formatted"`
	Unchanged   int `json:"unchanged"`
	WouldChange int `json:"wouldChange"`
	Cached      int `json:"cached"`
	Failed      int `json:"failed"`
}

// RunView is the serializable form of a RunReport.
type RunView struct {
	Command   string        `json:"command"`
	Files     []OutcomeView `json:"files"`
	Summary   SummaryView   `json:"summary"`
	Timestamp time.Time     `json:"timestamp"`
}

// CommandView is the serializable form of a matched command.
type CommandView struct {
	Index   int    `json:"index"`
	Command string `json:"command"`
	Cwd     string `json:"cwd"`
	Stdin   bool   `json:"stdin"`
}

// MatchView is the serializable form of a MatchReport.
type MatchView struct {
	Path     string        `json:"path"`
	Commands []CommandView `json:"commands"`
}

// SummaryLine describes the counts, omitting zero ones.
func (r *RunReport) SummaryLine() string {
	s := r.Summary
	if s.Total() == 0 {
		return "No files to format"
	}

	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(s.Formatted, "formatted")
	add(s.WouldChange, "would change")
	add(s.Unchanged, "unchanged")
	add(s.Cached, "cached")
	add(s.Failed, "failed")

	noun := "files"
	if s.Total() == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%s (%d %s)", strings.Join(parts, ", "), s.Total(), noun)
}
