package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/workspace"
)

func outcomes() []workspace.Outcome {
	return []workspace.Outcome{
		{Path: "/w/a.rs", Status: workspace.StatusFormatted, Elapsed: 1500 * time.Microsecond},
		{Path: "/w/b.rs", Status: workspace.StatusUnchanged},
		{Path: "/w/c.rs", Status: workspace.StatusCached},
		{Path: "/w/d.rs", Status: workspace.StatusFailed,
			Err: errors.New(errors.ErrFormatFailed, "command 0 (rustfmt) failed")},
	}
}

func TestRunReport_Listed(t *testing.T) {
	r := NewRunReport("fmt", outcomes())

	var paths []string
	for _, o := range r.Listed() {
		paths = append(paths, o.Path)
	}
	assert.Equal(t, []string{"/w/a.rs", "/w/d.rs"}, paths)

	r.Verbose = true
	assert.Len(t, r.Listed(), 4)
}

func TestRunReport_SummaryLine(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []workspace.Outcome
		want     string
	}{
		{name: "empty", want: "No files to format"},
		{
			name:     "single",
			outcomes: []workspace.Outcome{{Path: "a", Status: workspace.StatusWouldChange}},
			want:     "1 would change (1 file)",
		},
		{
			name:     "mixed",
			outcomes: outcomes(),
			want:     "1 formatted, 1 unchanged, 1 cached, 1 failed (4 files)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRunReport("fmt", tt.outcomes).SummaryLine())
		})
	}
}

func TestRunReport_View(t *testing.T) {
	v := NewRunReport("check", outcomes()).View()

	assert.Equal(t, "check", v.Command)
	assert.Len(t, v.Files, 4)
	assert.Equal(t, int64(1), v.Files[0].ElapsedMs)
	assert.Equal(t, "FORMAT_FAILED", v.Files[3].ErrorCode)
	assert.Contains(t, v.Files[3].Error, "rustfmt")
	assert.Equal(t, SummaryView{Total: 4, Formatted: 1, Unchanged: 1, Cached: 1, Failed: 1}, v.Summary)
}

func TestMatchReport_View(t *testing.T) {
	r := &MatchReport{
		Path: "/w/main.rs",
		Commands: []*config.CommandSpec{
			{Index: 2, Command: "rustfmt", Cwd: "/w", Stdin: true},
		},
	}
	assert.Equal(t, MatchView{
		Path:     "/w/main.rs",
		Commands: []CommandView{{Index: 2, Command: "rustfmt", Cwd: "/w", Stdin: true}},
	}, r.View())
}
