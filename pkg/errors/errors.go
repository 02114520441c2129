// Package errors provides structured error types for artgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP query service
//   - Machine-readable error codes for programmatic handling
//   - A clear distinction between "a filter rejected this" and
//     "this filter cannot answer" (ErrCodeUnsupported)
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input parsing and validation failures
//   - RESOLUTION_FAILED: The external resolver could not produce a tree
//   - NOT_FOUND / AMBIGUOUS: Graph lookups that require exactly one match
//   - UNSUPPORTED: An operation the receiver cannot perform for this subject
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPattern, "too many segments in %q", pattern)
//	if errors.Is(err, errors.ErrCodeInvalidPattern) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeResolution, origErr, "resolve %s", coord)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Parse and validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidPattern    Code = "INVALID_PATTERN"
	ErrCodeInvalidVersion    Code = "INVALID_VERSION"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"

	// Resolution errors
	ErrCodeResolution Code = "RESOLUTION_FAILED"

	// Lookup errors
	ErrCodeNotFound  Code = "NOT_FOUND"
	ErrCodeAmbiguous Code = "AMBIGUOUS"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

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
// It walks the whole chain, so a RESOLUTION_FAILED wrapping an
// UNSUPPORTED error matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Unsupported returns an UNSUPPORTED error for an operation the receiver
// cannot perform.
func Unsupported(format string, args ...any) *Error {
	return New(ErrCodeUnsupported, format, args...)
}

// IsUnsupported reports whether err signals an unsupported operation.
func IsUnsupported(err error) bool {
	return Is(err, ErrCodeUnsupported)
}
