package apperrors

import "net/http"

// Code is a machine-readable error code returned to API clients.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeBadRequest Code = "BAD_REQUEST"
	CodeValidation Code = "VALIDATION_FAILED"

	// Auth errors
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeForbidden          Code = "FORBIDDEN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
	CodeStorage  Code = "STORAGE_UNAVAILABLE"
)

// HTTPStatus maps a code to the response status the API uses for it.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated, CodeTokenInvalid, CodeTokenExpired, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsAuth reports whether the code means the caller must sign in again.
func (c Code) IsAuth() bool {
	return c.HTTPStatus() == http.StatusUnauthorized
}
