// Package workspace formats many files concurrently.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/execfmt/pkg/cache"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/formatter"
	"github.com/arthur-debert/execfmt/pkg/logging"
)

// Status is the outcome kind for one file.
type Status string

const (
	StatusFormatted   Status = "formatted"
	StatusUnchanged   Status = "unchanged"
	StatusWouldChange Status = "would-change"
	StatusCached      Status = "cached"
	StatusFailed      Status = "failed"
)

// Outcome records what happened to one file.
type Outcome struct {
	Path    string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Engine is the subset of engine.Engine used here.
type Engine interface {
	Format(ctx context.Context, path, text string) (formatter.Result, error)
}

// Options configures Run.
type Options struct {
	// Jobs bounds concurrent files. Defaults to GOMAXPROCS.
	Jobs int
	// Check reports files that would change without writing them.
	Check bool
	// Cache skips files already known to be formatted. May be nil.
	Cache *cache.Cache
}

// Summary counts outcomes by status.
type Summary struct {
	Formatted   int
	Unchanged   int
	WouldChange int
	Cached      int
	Failed      int
}

// Total returns the number of files processed.
func (s Summary) Total() int {
	return s.Formatted + s.Unchanged + s.WouldChange + s.Cached + s.Failed
}

// Summarize counts outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusFormatted:
			s.Formatted++
		case StatusUnchanged:
			s.Unchanged++
		case StatusWouldChange:
			s.WouldChange++
		case StatusCached:
			s.Cached++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Collect expands paths into the sorted list of files accepted by match.
// Directories are walked recursively, skipping hidden directories.
func Collect(paths []string, match func(path string) bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] && match(path) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "invalid path %s", root)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot access %s", root).
				WithDetail("path", root)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != abs && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to walk %s", root)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Run formats files with eng. A failure is recorded in that file's outcome
// and never stops the others. The returned error is non-nil only when ctx
// was cancelled. Outcomes are in the order of files.
func Run(ctx context.Context, eng Engine, files []string, opts Options) ([]Outcome, error) {
	logger := logging.GetLogger("workspace")
	done := logging.LogOperationStart(logger, "run")
	defer done()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(files))
	if len(files) == 0 {
		return outcomes, nil
	}

	var g errgroup.Group
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i] = Outcome{Path: path, Status: StatusFailed,
					Err: errors.Wrap(ctx.Err(), errors.ErrCancelled, "cancelled")}
				return nil
			}
			outcomes[i] = processFile(ctx, eng, path, opts, logger)
			return nil
		})
	}
	_ = g.Wait()

	if err := opts.Cache.Save(); err != nil {
		logger.Warn().Err(err).Msg("Failed to save cache")
	}

	if err := ctx.Err(); err != nil {
		return outcomes, errors.Wrap(err, errors.ErrCancelled, "formatting cancelled")
	}
	return outcomes, nil
}

func processFile(ctx context.Context, eng Engine, path string, opts Options, logger zerolog.Logger) Outcome {
	start := time.Now()
	outcome := Outcome{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
		return finish(outcome, start)
	}

	if opts.Cache.IsFormatted(path, content) {
		outcome.Status = StatusCached
		return finish(outcome, start)
	}

	result, err := eng.Format(ctx, path, string(content))
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		opts.Cache.Forget(path)
		logger.Debug().Err(err).Str("path", path).Msg("Formatting failed")
		return finish(outcome, start)
	}

	switch {
	case !result.Changed:
		outcome.Status = StatusUnchanged
		opts.Cache.MarkFormatted(path, content)
	case opts.Check:
		outcome.Status = StatusWouldChange
	default:
		if err := WriteFile(path, []byte(result.Text)); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			return finish(outcome, start)
		}
		outcome.Status = StatusFormatted
		opts.Cache.MarkFormatted(path, []byte(result.Text))
	}
	return finish(outcome, start)
}

func finish(o Outcome, start time.Time) Outcome {
	o.Elapsed = time.Since(start)
	return o
}

// WriteFile replaces path with data through a rename in the same
// directory, keeping the original permissions.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".execfmt-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set permissions on %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", path)
	}
	return nil
}
