// Package apiclient is the single place outbound auth API requests are made
// from. Every request returns a Result envelope so pages never deal with raw
// transport errors or backend-specific error payloads.
package apiclient

// DefaultErrorMessage is shown when a failure carries no usable message.
const DefaultErrorMessage = "Something went wrong. Please try again."

// NetworkErrorMessage is shown when the request never produced a response.
const NetworkErrorMessage = "Network error. Check your connection and try again."

// Result is the uniform envelope returned by every request. Exactly one
// shape is populated: OK with Data, or !OK with Error (and Status when the
// backend answered). Build it with Success or Failure.
type Result[T any] struct {
	OK   bool
	Data T

	// Error is a human-readable message, set only on failure.
	Error string

	// Status is the HTTP status code of a failed response. Zero when the
	// failure happened before a response was received.
	Status int
}

// Success returns the success variant carrying data.
func Success[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

// Failure returns the failure variant. An empty message is replaced by
// DefaultErrorMessage so a failure always has something to show; any other
// message, blank or not, is kept as the backend sent it.
func Failure[T any](message string, status int) Result[T] {
	if message == "" {
		message = DefaultErrorMessage
	}
	return Result[T]{Error: message, Status: status}
}

// HasStatus reports whether the failure carries an HTTP status code.
func (r Result[T]) HasStatus() bool {
	return !r.OK && r.Status != 0
}

// MessageResponse is the success body of every auth endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}
