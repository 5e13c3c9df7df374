package formatter_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/formatter"
	"github.com/arthur-debert/execfmt/pkg/process"
)

// MockRunner is a mock implementation of process.Runner
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Execute(ctx context.Context, inv process.Invocation, input []byte) (*process.Result, error) {
	args := m.Called(ctx, inv, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*process.Result), args.Error(1)
}

func stdout(text string) *process.Result {
	return &process.Result{Stdout: []byte(text)}
}

func commandIs(command string) interface{} {
	return mock.MatchedBy(func(inv process.Invocation) bool {
		return inv.Command.String() == command
	})
}

func newConfig(t *testing.T, raw map[string]interface{}) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.ResolveWithOptions(raw, config.ResolveOptions{WorkingDir: dir})
	require.NoError(t, err)
	return cfg, dir
}

func cmds(specs ...map[string]interface{}) []interface{} {
	out := make([]interface{}, len(specs))
	for i, s := range specs {
		out[i] = s
	}
	return out
}

func TestFormat_SingleCommand(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"lineWidth": 100,
		"commands":  cmds(map[string]interface{}{"command": "rustfmt", "exts": "rs"}),
	})
	path := filepath.Join(dir, "main.rs")

	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, mock.MatchedBy(func(inv process.Invocation) bool {
		return inv.Command.String() == "rustfmt" &&
			inv.Stdin &&
			inv.Dir == dir &&
			inv.Timeout == 30*time.Second &&
			inv.Ext == ".rs" &&
			inv.Vars.FilePath == path &&
			inv.Vars.FileText == "fn main(){}\n" &&
			inv.Vars.LineWidth == 100 &&
			inv.Vars.Timeout == 30
	}), []byte("fn main(){}\n")).Return(stdout("fn main() {}\n"), nil)

	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{Path: path, Text: "fn main(){}\n"})

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, "fn main() {}\n", result.Text)
	runner.AssertExpectations(t)
}

func TestFormat_FailingCommand(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "false", "exts": "txt"}),
	})

	exitErr := errors.New(errors.ErrProcessExitNonZero, "false exited with code 1").
		WithDetail("exit_code", 1).
		WithDetail("stderr", "")
	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, commandIs("false"), mock.Anything).
		Return(&process.Result{ExitCode: 1}, exitErr)

	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "a.txt"), Text: "hello"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrFormatFailed, errors.GetErrorCode(err))
	assert.True(t, errors.IsErrorCode(err, errors.ErrProcessExitNonZero))
	assert.Equal(t, 0, errors.GetErrorDetails(err)["command_index"])
	assert.Equal(t, "false", errors.GetErrorDetails(err)["command"])
	assert.Equal(t, formatter.Result{Text: "hello"}, result)
}

func TestFormat_ChainsInOrder(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(
			map[string]interface{}{"command": "sort-keys", "exts": "json"},
			map[string]interface{}{"command": "rustfmt", "exts": "rs"},
			map[string]interface{}{"command": "indent", "exts": "json"},
		),
	})

	runner := new(MockRunner)
	first := runner.On("Execute", mock.Anything, commandIs("sort-keys"), []byte(`{"b":1,"a":2}`)).
		Return(stdout(`{"a":2,"b":1}`), nil).Once()
	runner.On("Execute", mock.Anything, mock.MatchedBy(func(inv process.Invocation) bool {
		return inv.Command.String() == "indent" && inv.Vars.FileText == `{"a":2,"b":1}`
	}), []byte(`{"a":2,"b":1}`)).
		Return(stdout("{\n  \"a\": 2,\n  \"b\": 1\n}\n"), nil).Once().NotBefore(first)

	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{
		Path: filepath.Join(dir, "data.json"),
		Text: `{"b":1,"a":2}`,
	})

	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}\n", result.Text)
	runner.AssertExpectations(t)
	runner.AssertNumberOfCalls(t, "Execute", 2)
}

func TestFormat_ChainAbortsOnFailure(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(
			map[string]interface{}{"command": "first", "exts": "md"},
			map[string]interface{}{"command": "second", "exts": "md"},
			map[string]interface{}{"command": "third", "exts": "md"},
		),
	})

	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, commandIs("first"), mock.Anything).Return(stdout("step1"), nil)
	runner.On("Execute", mock.Anything, commandIs("second"), mock.Anything).
		Return(&process.Result{TimedOut: true}, errors.New(errors.ErrProcessTimedOut, "second timed out"))

	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "README.md"), Text: "doc"})

	require.Error(t, err)
	assert.Equal(t, formatter.Result{Text: "doc"}, result)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProcessTimedOut))
	assert.Equal(t, 1, errors.GetErrorDetails(err)["command_index"])
	runner.AssertNotCalled(t, "Execute", mock.Anything, commandIs("third"), mock.Anything)
}

func TestFormat_NoMatchIsNoOp(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "rustfmt", "exts": "rs"}),
	})

	runner := new(MockRunner)
	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "main.go"), Text: "package main"})

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, "package main", result.Text)
	runner.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestFormat_UnchangedIsNoOp(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "cat", "exts": "txt"}),
	})

	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(stdout("same\n"), nil)

	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "a.txt"), Text: "same\n"})

	require.NoError(t, err)
	assert.False(t, result.Changed)
}

func TestFormat_NewLineKinds(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		goos     string
		original string
		output   string
		want     string
	}{
		{"lf converts crlf output", "lf", "linux", "a\r\nb", "x\r\ny\r\n", "x\ny\n"},
		{"crlf converts lf output", "crlf", "linux", "a\nb", "x\ny\n", "x\r\ny\r\n"},
		{"crlf keeps crlf output", "crlf", "linux", "a\nb", "x\r\ny\n", "x\r\ny\r\n"},
		{"auto follows crlf original", "auto", "linux", "a\r\nb\n", "x\ny\n", "x\r\ny\r\n"},
		{"auto follows lf original", "auto", "linux", "a\nb\r\n", "x\r\ny\r\n", "x\ny\n"},
		{"auto defaults to lf", "auto", "windows", "single line", "x\r\n", "x\n"},
		{"system on windows", "system", "windows", "a\nb", "x\ny\n", "x\r\ny\r\n"},
		{"system elsewhere", "system", "darwin", "a\r\nb", "x\r\ny\r\n", "x\ny\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, dir := newConfig(t, map[string]interface{}{
				"newLineKind": tt.kind,
				"commands":    cmds(map[string]interface{}{"command": "fmt", "exts": "txt"}),
			})
			runner := new(MockRunner)
			runner.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(stdout(tt.output), nil)

			f := formatter.New(cfg, runner, formatter.Options{GOOS: tt.goos})
			result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "a.txt"), Text: tt.original})

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
		})
	}
}

func TestFormat_EmptyOutputGuard(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "broken", "exts": "txt"}),
	})
	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(stdout("  \n"), nil)
	f := formatter.New(cfg, runner, formatter.Options{})

	long := strings.Repeat("word ", 30)
	_, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "a.txt"), Text: long})
	require.Error(t, err)
	assert.Equal(t, errors.ErrFormatEmptyOutput, errors.GetErrorCode(err))

	result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "b.txt"), Text: "short"})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, "  \n", result.Text)
}

func TestFormat_CancelledBeforeStep(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "fmt", "exts": "txt"}),
	})
	runner := new(MockRunner)
	f := formatter.New(cfg, runner, formatter.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Format(ctx, formatter.Request{Path: filepath.Join(dir, "a.txt"), Text: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCancelled, errors.GetErrorCode(err))
	runner.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestFormat_CancelledDuringStepIsNotWrapped(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "fmt", "exts": "txt"}),
	})
	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCancelled, "fmt was cancelled"))
	f := formatter.New(cfg, runner, formatter.Options{})

	_, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "a.txt"), Text: "x"})
	assert.Equal(t, errors.ErrCancelled, errors.GetErrorCode(err))
}

func TestFormat_TempFileCommandGetsExtension(t *testing.T) {
	cfg, dir := newConfig(t, map[string]interface{}{
		"commands": cmds(map[string]interface{}{"command": "shfmt {{file_path}}", "exts": "sh", "stdin": false}),
	})
	runner := new(MockRunner)
	runner.On("Execute", mock.Anything, mock.MatchedBy(func(inv process.Invocation) bool {
		return !inv.Stdin && inv.Ext == ".sh"
	}), mock.Anything).Return(stdout("echo hi\n"), nil)

	f := formatter.New(cfg, runner, formatter.Options{})
	result, err := f.Format(context.Background(), formatter.Request{Path: filepath.Join(dir, "run.sh"), Text: "echo   hi\n"})

	require.NoError(t, err)
	assert.Equal(t, "echo hi\n", result.Text)
	runner.AssertExpectations(t)
}
