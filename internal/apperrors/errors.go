// Package apperrors provides the structured errors shared by stores, the
// token service and the HTTP layer.
package apperrors

import (
	"errors"

	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// Error is the domain error type.
type Error struct {
	Code    Code                   // Machine-readable error code
	Message string                 // Safe to show to the caller
	Fields  validation.FieldErrors // Per-field messages for CodeValidation
	Cause   error                  // Wrapped underlying error, never rendered
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation creates a CodeValidation error carrying per-field messages.
func Validation(fields validation.FieldErrors) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// Storage wraps a driver failure.
func Storage(message string, cause error) *Error {
	return Wrap(CodeStorage, message, cause)
}

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound     = New(CodeNotFound, "not found")
	ErrForbidden    = New(CodeForbidden, "forbidden")
	ErrStorage      = New(CodeStorage, "storage unavailable")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenExpired = New(CodeTokenExpired, "token expired")
)
