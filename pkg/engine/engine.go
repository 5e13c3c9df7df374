// Package engine is the entry point hosts use to format files with
// external commands.
//
//	eng, err := engine.New(cfg, engine.Options{})
//	result, err := eng.Format(ctx, "src/main.rs", text)
//
// An Engine is immutable. Reloading configuration means building a new
// Engine; in-flight calls on the old one are unaffected.
package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/execfmt/pkg/cachekey"
	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/formatter"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/process"
)

// Options configures an Engine.
type Options struct {
	// Runner executes commands. Defaults to an os/exec runner.
	Runner process.Runner
	// Process configures the default runner.
	Process process.Options
	// Formatter is passed through to the formatter.
	Formatter formatter.Options
}

// Engine formats files according to one configuration.
type Engine struct {
	cfg         *config.Config
	formatter   *formatter.Formatter
	fingerprint string
	logger      zerolog.Logger
}

// New builds an engine for cfg and computes its fingerprint.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrInvalidInput, "engine requires a configuration")
	}

	fingerprint, err := cachekey.Fingerprint(cfg)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner(opts.Process)
	}

	logger := logging.GetLogger("engine")
	logger.Debug().
		Int("commands", len(cfg.Commands)).
		Str("fingerprint", fingerprint).
		Msg("Engine created")

	return &Engine{
		cfg:         cfg,
		formatter:   formatter.New(cfg, runner, opts.Formatter),
		fingerprint: fingerprint,
		logger:      logger,
	}, nil
}

// Format formats text, which was read from path. Changed is false when
// nothing should be written.
func (e *Engine) Format(ctx context.Context, path, text string) (formatter.Result, error) {
	return e.formatter.Format(ctx, formatter.Request{Path: path, Text: text})
}

// Fingerprint returns the configuration fingerprint computed by New.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Matches returns the commands that apply to path, in order.
func (e *Engine) Matches(path string) []*config.CommandSpec {
	return e.cfg.Match(path)
}

// ComputeFingerprint returns the fingerprint of cfg without building an
// engine.
func ComputeFingerprint(cfg *config.Config) (string, error) {
	return cachekey.Fingerprint(cfg)
}
