// Package errors provides structured error types for ruleviz.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so that the CLI, the HTTP host and the flow controller can decide
// how to react without string matching:
//
//   - MALFORMED_ENCODING: a stimulus encoding could not be decoded
//   - INVALID_ALIGNMENT: an alignment is malformed or does not cover the output
//   - LAYOUT_NONCONVERGENCE: relaxation stopped early (recoverable)
//   - INVALID_*: other input validation failures
//   - NOT_FOUND / FILE_NOT_FOUND: missing resources
//   - NETWORK_ERROR: stimulus source failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedEncoding, "truncated term at offset %d", off)
//	if errors.Is(err, errors.ErrCodeMalformedEncoding) {
//	    // skip the stimulus
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Stimulus processing errors
	ErrCodeMalformedEncoding    Code = "MALFORMED_ENCODING"
	ErrCodeInvalidAlignment     Code = "INVALID_ALIGNMENT"
	ErrCodeLayoutNonconvergence Code = "LAYOUT_NONCONVERGENCE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidDomain Code = "INVALID_DOMAIN"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Runtime state errors
	ErrCodeBusy Code = "BUSY"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether processing may continue with a degraded result.
// Only layout nonconvergence qualifies: the caller still holds the best layout.
func Recoverable(err error) bool {
	return Is(err, ErrCodeLayoutNonconvergence)
}
