// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "file not found",
			wantStr: "[NOT_FOUND] file not found",
		},
		{
			name:    "empty_command_error",
			code:    errors.ErrConfigEmptyCommand,
			message: "expected to find a command name",
			wantStr: "[CONFIG_EMPTY_COMMAND] expected to find a command name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrProcessExitNonZero, "process exited with code %d", 3)
	assert.Equal(t, "process exited with code 3", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrInternal, "internal error")

		assert.Equal(t, errors.ErrInternal, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[INTERNAL] internal error: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrProcessExitNonZero, "failed").
		WithDetail("exit_code", 2).
		WithDetail("stderr", "boom")

	assert.Equal(t, 2, err.Details["exit_code"])
	assert.Equal(t, "boom", err.Details["stderr"])
}

func TestWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"command_index": 1,
		"command":       "rustfmt",
	}

	err := errors.New(errors.ErrFormatFailed, "step failed").WithDetails(details)

	assert.Equal(t, details, err.Details)
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrProcessTimedOut, "error 1")
	err2 := errors.New(errors.ErrProcessTimedOut, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.True(t, stderrors.Is(err1, err2))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("base"), errors.ErrFileAccess, "denied"),
			code:     errors.ErrFileAccess,
			expected: true,
		},
		{
			name: "nested_code",
			err: errors.Wrap(
				errors.New(errors.ErrProcessTimedOut, "too slow"),
				errors.ErrFormatFailed, "command 0 failed"),
			code:     errors.ErrProcessTimedOut,
			expected: true,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrCancelled, errors.GetErrorCode(errors.New(errors.ErrCancelled, "stop")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestFindErrorCode(t *testing.T) {
	inner := errors.New(errors.ErrProcessExitNonZero, "exit 1").WithDetail("exit_code", 1)
	outer := errors.Wrap(inner, errors.ErrFormatFailed, "command 0 failed")

	found, ok := errors.FindErrorCode(outer, errors.ErrProcessExitNonZero)
	require.True(t, ok)
	assert.Equal(t, 1, found.Details["exit_code"])

	_, ok = errors.FindErrorCode(outer, errors.ErrProcessTimedOut)
	assert.False(t, ok)
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read file")
	configErr := errors.Wrap(fileErr, errors.ErrConfigLoad, "failed to load config")

	assert.Equal(t, errors.ErrConfigLoad, errors.GetErrorCode(configErr))
	assert.True(t, errors.IsErrorCode(configErr, errors.ErrFileAccess))
	assert.True(t, stderrors.Is(configErr, rootCause))
}
