// Package errs provides structured error types for the fatal conditions of a run.
// Failures of the remote analysis call are not errors; they are reported as
// analysis.Failure values.
package errs

import (
	"errors"
	"fmt"
)

// Code classifies a structured error.
type Code string

const (
	// CodeCollectionFailed indicates no telemetry category could be gathered.
	CodeCollectionFailed Code = "COLLECTION_FAILED"
	// CodeConfigInvalid indicates missing or malformed configuration.
	CodeConfigInvalid Code = "CONFIG_INVALID"
	// CodeInternal indicates a broken calling contract, such as a nil argument.
	CodeInternal Code = "INTERNAL"
)

// StructuredError carries a code, a human-readable message, the underlying
// cause and optional context for logging.
type StructuredError struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a StructuredError with the given code and message.
func New(code Code, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Wrap wraps cause with a code and message.
func Wrap(code Code, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// WrapWithContext wraps cause and attaches context for diagnostics.
func WrapWithContext(code Code, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause, Context: context}
}

// Is reports whether any error in err's chain is a StructuredError with code.
func Is(err error, code Code) bool {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
