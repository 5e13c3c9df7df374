package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad             ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid          ErrorCode = "CONFIG_INVALID"
	ErrConfigUnknownKey       ErrorCode = "CONFIG_UNKNOWN_KEY"
	ErrConfigInvalidType      ErrorCode = "CONFIG_INVALID_TYPE"
	ErrConfigInvalidValue     ErrorCode = "CONFIG_INVALID_VALUE"
	ErrConfigEmptyCommand     ErrorCode = "CONFIG_EMPTY_COMMAND"
	ErrConfigInvalidTimeout   ErrorCode = "CONFIG_INVALID_TIMEOUT"
	ErrConfigInvalidPattern   ErrorCode = "CONFIG_INVALID_PATTERN"
	ErrConfigInvalidTemplate  ErrorCode = "CONFIG_INVALID_TEMPLATE"
	ErrConfigMissingMatchRule ErrorCode = "CONFIG_MISSING_MATCH_RULE"
	ErrConfigMissingCommands  ErrorCode = "CONFIG_MISSING_COMMANDS"
	ErrConfigReadFailed       ErrorCode = "CONFIG_READ_FAILED"

	// Template errors
	ErrTemplateUnknownPlaceholder ErrorCode = "TEMPLATE_UNKNOWN_PLACEHOLDER"
	ErrTemplateSyntax             ErrorCode = "TEMPLATE_SYNTAX"
	ErrTemplateEmpty              ErrorCode = "TEMPLATE_EMPTY"

	// Process errors
	ErrProcessSpawnFailed ErrorCode = "PROCESS_SPAWN_FAILED"
	ErrProcessIO          ErrorCode = "PROCESS_IO"
	ErrProcessExitNonZero ErrorCode = "PROCESS_EXIT_NON_ZERO"
	ErrProcessTimedOut    ErrorCode = "PROCESS_TIMED_OUT"

	// Format errors
	ErrFormatFailed      ErrorCode = "FORMAT_FAILED"
	ErrFormatEmptyOutput ErrorCode = "FORMAT_EMPTY_OUTPUT"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrCache      ErrorCode = "CACHE"
)

// ExecfmtError represents a structured error with code and details
type ExecfmtError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ExecfmtError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ExecfmtError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ExecfmtError) Is(target error) bool {
	var targetErr *ExecfmtError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ExecfmtError with the given code and message
func New(code ErrorCode, message string) *ExecfmtError {
	return &ExecfmtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ExecfmtError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ExecfmtError {
	return &ExecfmtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an ExecfmtError
func Wrap(err error, code ErrorCode, message string) *ExecfmtError {
	if err == nil {
		return nil
	}
	return &ExecfmtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ExecfmtError {
	if err == nil {
		return nil
	}
	return &ExecfmtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ExecfmtError) WithDetail(key string, value interface{}) *ExecfmtError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *ExecfmtError) WithDetails(details map[string]interface{}) *ExecfmtError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode reports whether any error in err's chain has the given code.
// Wrapping errors are walked, so a FORMAT_FAILED error wrapping a
// PROCESS_TIMED_OUT error matches both codes.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var execErr *ExecfmtError
		if !errors.As(err, &execErr) {
			return false
		}
		if execErr.Code == code {
			return true
		}
		err = execErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an ExecfmtError
func GetErrorCode(err error) ErrorCode {
	var execErr *ExecfmtError
	if errors.As(err, &execErr) {
		return execErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an ExecfmtError
func GetErrorDetails(err error) map[string]interface{} {
	var execErr *ExecfmtError
	if errors.As(err, &execErr) {
		return execErr.Details
	}
	return nil
}

// FindErrorCode returns the first error in err's chain carrying code.
func FindErrorCode(err error, code ErrorCode) (*ExecfmtError, bool) {
	for err != nil {
		var execErr *ExecfmtError
		if !errors.As(err, &execErr) {
			return nil, false
		}
		if execErr.Code == code {
			return execErr, true
		}
		err = execErr.Wrapped
	}
	return nil, false
}
