// Package formatter formats one file by folding its text through every
// configured command that matches the file's path.
//
// Commands run in configuration order. The output of each step is the input
// of the next, so "sort keys" followed by "indent" both apply to a JSON
// file. The first failing step aborts the chain and nothing is returned.
package formatter

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/process"
	"github.com/arthur-debert/execfmt/pkg/template"
)

// EmptyOutputThreshold is the trimmed input length above which an empty
// result is treated as a broken formatter rather than a real rewrite.
const EmptyOutputThreshold = 100

// Request is one file to format.
type Request struct {
	Path string
	Text string
}

// Result is the formatted text. Changed is false when there is nothing to
// write, either because no command matched or because the output equals the
// input. On error Text holds the original input.
type Result struct {
	Text    string
	Changed bool
}

// Options configures a Formatter.
type Options struct {
	// GOOS selects the line ending for NewLineSystem. Defaults to
	// runtime.GOOS.
	GOOS string
}

// Formatter runs the matching commands of a configuration. It is safe for
// concurrent use; every Format call works on its own copy of the text.
type Formatter struct {
	cfg    *config.Config
	runner process.Runner
	opts   Options
	logger zerolog.Logger
}

// New creates a formatter over cfg that executes commands with runner.
func New(cfg *config.Config, runner process.Runner, opts Options) *Formatter {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	return &Formatter{
		cfg:    cfg,
		runner: runner,
		opts:   opts,
		logger: logging.GetLogger("formatter"),
	}
}

// Config returns the configuration the formatter was built with.
func (f *Formatter) Config() *config.Config {
	return f.cfg
}

// Format runs every matching command over req.Text in order.
func (f *Formatter) Format(ctx context.Context, req Request) (Result, error) {
	logger := f.logger.With().
		Str("request_id", uuid.NewString()).
		Str("path", req.Path).
		Logger()

	matches := f.cfg.Match(req.Path)
	if len(matches) == 0 {
		logger.Trace().Msg("No command matches")
		return Result{Text: req.Text}, nil
	}

	path, err := filepath.Abs(req.Path)
	if err != nil {
		return Result{Text: req.Text}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", req.Path)
	}

	general := f.cfg.General
	current := req.Text
	for step, spec := range matches {
		if err := ctx.Err(); err != nil {
			return Result{Text: req.Text}, errors.Wrap(err, errors.ErrCancelled, "formatting cancelled")
		}

		inv := process.Invocation{
			Command: spec.Template(),
			Vars: template.Vars{
				FilePath:    path,
				FileText:    current,
				LineWidth:   general.LineWidth,
				UseTabs:     general.UseTabs,
				IndentWidth: general.IndentWidth,
				Cwd:         spec.Cwd,
				Timeout:     general.Timeout,
			},
			Dir:     spec.Cwd,
			Stdin:   spec.Stdin,
			Timeout: general.TimeoutDuration(),
			Ext:     filepath.Ext(path),
		}

		logger.Debug().
			Int("step", step).
			Int("command_index", spec.Index).
			Str("command", spec.Command).
			Msg("Running command")

		result, err := f.runner.Execute(ctx, inv, []byte(current))
		if err != nil {
			if errors.GetErrorCode(err) == errors.ErrCancelled {
				return Result{Text: req.Text}, err
			}
			logger.Debug().Err(err).Int("command_index", spec.Index).Msg("Command failed")
			return Result{Text: req.Text}, errors.Wrapf(err, errors.ErrFormatFailed,
				"command %d (%s) failed", spec.Index, spec.Command).
				WithDetail("command_index", spec.Index).
				WithDetail("command", spec.Command).
				WithDetail("path", req.Path)
		}
		current = string(result.Stdout)
	}

	formatted := normalizeNewlines(current, general.NewLineKind, req.Text, f.opts.GOOS)

	if len(strings.TrimSpace(req.Text)) > EmptyOutputThreshold && strings.TrimSpace(formatted) == "" {
		return Result{Text: req.Text}, errors.Newf(errors.ErrFormatEmptyOutput,
			"formatting %s produced empty output", req.Path).
			WithDetail("path", req.Path)
	}

	if formatted == req.Text {
		logger.Debug().Msg("Text unchanged")
		return Result{Text: req.Text}, nil
	}
	return Result{Text: formatted, Changed: true}, nil
}
