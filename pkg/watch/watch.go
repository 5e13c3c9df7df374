// Package watch formats files as they change on disk.
//
// Changes are debounced per path so an editor's burst of writes produces a
// single format run. Edits to the configuration file rebuild the engine;
// files keep being formatted with the previous engine when the new
// configuration is invalid.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/execfmt/pkg/engine"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/internal/hashutil"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/workspace"
)

// DefaultDebounce is the quiet period before a changed file is formatted.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Roots are the directories to watch recursively.
	Roots []string
	// ConfigPath triggers a reload when it changes. Optional.
	ConfigPath string
	// Load builds the engine, at start and on every reload.
	Load func() (*engine.Engine, error)
	// Debounce overrides DefaultDebounce.
	Debounce time.Duration
	// OnOutcome receives every formatted file. Optional.
	OnOutcome func(workspace.Outcome)
	// OnReload receives the result of every reload. Optional.
	OnReload func(eng *engine.Engine, err error)
}

// Watcher watches directories and formats changed files.
type Watcher struct {
	opts    Options
	fs      *fsnotify.Watcher
	logger  zerolog.Logger
	mu      sync.Mutex
	pending map[string]time.Time
	eng     *engine.Engine
	// written holds the checksum of the last content we wrote per path, so
	// our own writes do not trigger another run.
	written map[string]string
}

// New creates a watcher and builds the initial engine.
func New(opts Options) (*Watcher, error) {
	if opts.Load == nil {
		return nil, errors.New(errors.ErrInvalidInput, "watch requires a loader")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	eng, err := opts.Load()
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}

	w := &Watcher{
		opts:    opts,
		fs:      fsw,
		logger:  logging.GetLogger("watch"),
		pending: make(map[string]time.Time),
		eng:     eng,
		written: make(map[string]string),
	}

	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "invalid path %s", root)
		}
		if err := w.addRecursive(abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	if opts.ConfigPath != "" {
		// Editors often replace files atomically, which drops a watch on the
		// file itself, so watch its directory.
		if err := fsw.Add(filepath.Dir(opts.ConfigPath)); err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to watch %s", opts.ConfigPath)
		}
	}

	return w, nil
}

// Engine returns the engine currently in use.
func (w *Watcher) Engine() *engine.Engine {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.eng
}

// Run processes events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		_ = w.fs.Close()
	}()

	ticker := time.NewTicker(w.opts.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				w.logger.Warn().Err(err).Str("path", path).Msg("Failed to watch new directory")
			}
			return
		}
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// flush handles every path that has been quiet for the debounce period.
func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()
	var ready []string
	reload := false

	w.mu.Lock()
	for path, changed := range w.pending {
		if now.Sub(changed) < w.opts.Debounce {
			continue
		}
		delete(w.pending, path)
		if w.isConfig(path) {
			reload = true
			continue
		}
		ready = append(ready, path)
	}
	w.mu.Unlock()

	if reload {
		w.reload()
	}
	if len(ready) > 0 {
		w.format(ctx, ready)
	}
}

func (w *Watcher) isConfig(path string) bool {
	return w.opts.ConfigPath != "" && path == filepath.Clean(w.opts.ConfigPath)
}

func (w *Watcher) reload() {
	eng, err := w.opts.Load()
	if err != nil {
		w.logger.Error().Err(err).Msg("Configuration reload failed, keeping previous configuration")
	} else {
		w.mu.Lock()
		w.eng = eng
		w.written = make(map[string]string)
		w.mu.Unlock()
		w.logger.Info().Str("fingerprint", eng.Fingerprint()).Msg("Configuration reloaded")
	}
	if w.opts.OnReload != nil {
		w.opts.OnReload(eng, err)
	}
}

func (w *Watcher) format(ctx context.Context, paths []string) {
	eng := w.Engine()

	var files []string
	for _, path := range paths {
		if len(eng.Matches(path)) == 0 {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		w.mu.Lock()
		ours := w.written[path] == hashutil.TextChecksum(content)
		w.mu.Unlock()
		if !ours {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return
	}

	outcomes, err := workspace.Run(ctx, eng, files, workspace.Options{})
	if err != nil {
		w.logger.Debug().Err(err).Msg("Format run interrupted")
	}

	for _, o := range outcomes {
		if o.Status == workspace.StatusFormatted || o.Status == workspace.StatusUnchanged {
			if content, err := os.ReadFile(o.Path); err == nil {
				w.mu.Lock()
				w.written[o.Path] = hashutil.TextChecksum(content)
				w.mu.Unlock()
			}
		}
		if o.Err != nil {
			w.logger.Error().Err(o.Err).Str("path", o.Path).Msg("Formatting failed")
		}
		if w.opts.OnOutcome != nil {
			w.opts.OnOutcome(o)
		}
	}
}

// addRecursive adds a directory and all its subdirectories to the watch list
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", dir)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("Failed to watch directory")
		}
		return nil
	})
}
