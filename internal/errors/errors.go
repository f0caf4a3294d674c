package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig            = "CONFIG"
	ErrConfigMissing     = "CONFIG_MISSING"
	ErrConfigCorrupt     = "CONFIG_CORRUPT"
	ErrConfigWrite       = "CONFIG_WRITE"
	ErrSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrSourcePartial     = "SOURCE_PARTIAL"
	ErrSampleTimeout     = "SAMPLE_TIMEOUT"
	ErrTerminal          = "TERMINAL"
	ErrRender            = "RENDER"
	ErrEditor            = "EDITOR"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// It prints as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrConfig code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrConfig,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var gcErr *Error
	if errors.As(err, &gcErr) {
		return gcErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost structured Error in the chain,
// or an empty string when there is none.
func CodeOf(err error) string {
	var gcErr *Error
	if errors.As(err, &gcErr) {
		return gcErr.Code
	}
	return ""
}

// Fatal reports whether an error must end the program. Only terminal and
// rendering failures qualify; everything else is contained by its component.
func Fatal(err error) bool {
	return IsCode(err, ErrTerminal) || IsCode(err, ErrRender)
}

// ExitError carries a process exit code through cobra's error return.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError for the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
