// Package process runs external formatter commands.
//
// Each Execute call spawns one process, feeds it the text either on
// standard input or through a temporary file, and waits for it under a
// timeout. On timeout or cancellation the whole process tree is killed, so a
// shell wrapper cannot leave an orphaned formatter behind.
package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/template"
)

// DefaultWaitDelay bounds how long Wait keeps draining output after the
// process was killed or exited while a descendant still holds its pipes.
const DefaultWaitDelay = 2 * time.Second

// Invocation describes one process run.
type Invocation struct {
	Command *template.Command
	Vars    template.Vars
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Stdin selects standard input delivery. When false the input is
	// written to a temporary file whose path replaces Vars.FilePath.
	Stdin   bool
	Timeout time.Duration
	// Ext is the temporary file extension, including the dot.
	Ext string
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Elapsed  time.Duration
	TimedOut bool
}

// Runner executes invocations. Implementations must be safe for concurrent
// use.
type Runner interface {
	Execute(ctx context.Context, inv Invocation, input []byte) (*Result, error)
}

// Options configures an ExecRunner.
type Options struct {
	// TempDir holds temporary input files. Empty means os.TempDir.
	TempDir string
	// WaitDelay overrides DefaultWaitDelay.
	WaitDelay time.Duration
	// Env replaces the inherited environment when non-nil.
	Env []string
}

// ExecRunner runs invocations as OS processes.
type ExecRunner struct {
	logger zerolog.Logger
	opts   Options
}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner(opts Options) *ExecRunner {
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = DefaultWaitDelay
	}
	return &ExecRunner{
		logger: logging.GetLogger("process"),
		opts:   opts,
	}
}

// Execute runs inv with input and blocks until the process exits, is
// killed, or fails. A non-zero exit returns both the Result and a
// PROCESS_EXIT_NON_ZERO error.
func (r *ExecRunner) Execute(ctx context.Context, inv Invocation, input []byte) (*Result, error) {
	if inv.Command == nil {
		return nil, errors.New(errors.ErrInvalidInput, "invocation has no command")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "cancelled before start")
	}

	vars := inv.Vars
	if !inv.Stdin {
		path, cleanup, err := r.writeTempFile(inv.Ext, input)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		vars.FilePath = path
	}

	program, args, err := inv.Command.Render(vars)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, program, args...)
	cmd.Dir = inv.Dir
	cmd.Env = r.opts.Env
	cmd.WaitDelay = r.opts.WaitDelay
	configureKill(cmd)

	if inv.Stdin {
		cmd.Stdin = bytes.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.LogCommand(r.logger, program, args, inv.Dir)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrProcessSpawnFailed, "failed to start %s", program).
			WithDetail("program", program)
	}
	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	result := &Result{Elapsed: elapsed}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	r.logger.Debug().
		Str("program", program).
		Strs("args", args).
		Str("dir", inv.Dir).
		Int("exit_code", result.ExitCode).
		Dur("elapsed", elapsed).
		Msg("Command finished")

	if waitErr == nil {
		result.Stdout = stdout.Bytes()
		result.Stderr = stderr.Bytes()
		return result, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, errors.Wrapf(ctx.Err(), errors.ErrCancelled, "%s was cancelled", program).
			WithDetail("program", program)
	case runCtx.Err() != nil:
		result.TimedOut = true
		return result, errors.Newf(errors.ErrProcessTimedOut, "%s timed out after %s", program, inv.Timeout).
			WithDetail("program", program).
			WithDetail("timeout", inv.Timeout.String())
	}

	var exitErr *exec.ExitError
	if stderrors.As(waitErr, &exitErr) {
		result.Stdout = stdout.Bytes()
		result.Stderr = stderr.Bytes()
		return result, errors.Wrapf(waitErr, errors.ErrProcessExitNonZero,
			"%s exited with code %d: %s", program, result.ExitCode, bytes.TrimSpace(result.Stderr)).
			WithDetail("program", program).
			WithDetail("exit_code", result.ExitCode).
			WithDetail("stderr", string(result.Stderr))
	}

	return nil, errors.Wrapf(waitErr, errors.ErrProcessIO, "i/o failure running %s", program).
		WithDetail("program", program)
}

// writeTempFile stores input in a fresh file named with ext so tools can
// detect the language. The returned cleanup removes it.
func (r *ExecRunner) writeTempFile(ext string, input []byte) (string, func(), error) {
	f, err := os.CreateTemp(r.opts.TempDir, "execfmt-*"+ext)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrProcessIO, "failed to create temporary file")
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove temporary file")
		}
	}

	if _, err := f.Write(input); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrProcessIO, "failed to write temporary file")
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrProcessIO, "failed to close temporary file")
	}
	return path, cleanup, nil
}
