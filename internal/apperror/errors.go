// Package apperror provides the error type handlers return when a request
// cannot be served. Each error carries an HTTP status code and a message
// that is safe to put in front of the user. The Echo error handler in
// internal/app renders them.
//
// Never surface raw transport or backend errors to the browser. Wrap them
// with NewInternal so the cause is logged and the user sees a generic message.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base error type for all request errors.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// --- Constructors for common error types ---

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: "not_found", Message: message}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: "bad_request", Message: message}
}

// NewConflict creates a 409 Conflict error. Used when a submission arrives
// while another from the same client is still in flight.
func NewConflict(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Type: "conflict", Message: message}
}

// NewTooManyRequests creates a 429 error for rate-limited clients.
func NewTooManyRequests(message string) *AppError {
	return &AppError{Code: http.StatusTooManyRequests, Type: "rate_limited", Message: message}
}

// NewUpstream wraps a failure reported by the backend auth API. 4xx codes
// pass through; anything else becomes 502 since this server is a gateway to
// that backend.
func NewUpstream(status int, message string) *AppError {
	code := status
	if code < 400 || code > 499 {
		code = http.StatusBadGateway
	}
	return &AppError{Code: code, Type: "upstream_error", Message: message}
}

// NewUnavailable creates a 503 for when the backend could not be reached.
func NewUnavailable(message string) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Type: "network_error", Message: message}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe message from err. Non-AppErrors get
// a generic message.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
