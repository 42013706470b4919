package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standardized application error returned by services and
// rendered by API handlers. Code is a stable wire identifier; Message is the
// user-facing text, already normalized for security-sensitive failures.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"error_description,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Stable error codes.
const (
	InvalidSession    = "invalid_session"
	Unauthorized      = "unauthorized"
	Forbidden         = "forbidden"
	UpstreamFailure   = "upstream_failure"
	ValidationFailure = "validation_failure"
)

// HTTPStatus maps an error code to its HTTP response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidSession, Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case ValidationFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

func NewInvalidSession() *AppError {
	return &AppError{Code: InvalidSession, Message: "not authenticated"}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: Unauthorized, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: Forbidden, Message: message}
}

// NewUpstreamFailure returns the generic retry-suggesting message surfaced to
// users when a provider or database call fails. The underlying cause is
// logged server-side by the caller, never returned.
func NewUpstreamFailure() *AppError {
	return &AppError{Code: UpstreamFailure, Message: "something went wrong, please try again"}
}

func NewValidationFailure(message string) *AppError {
	return &AppError{Code: ValidationFailure, Message: message}
}
