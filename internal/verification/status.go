// Package verification drives a single email verification attempt for one
// page view: it reads the token once, calls the backend through a Verifier,
// and settles on success or error. Views are immutable snapshots so the
// caller can render any stage of the attempt.
package verification

import "fmt"

// Status is the stage of a verification attempt.
type Status int

const (
	// StatusVerifying is the initial stage, before the outcome is known.
	StatusVerifying Status = iota
	// StatusSuccess means the backend accepted the token.
	StatusSuccess
	// StatusError means the token was missing or rejected.
	StatusError
)

// String returns the lowercase name used in templates and logs.
func (s Status) String() string {
	switch s {
	case StatusVerifying:
		return "verifying"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Resolved reports whether the attempt has finished.
func (s Status) Resolved() bool {
	return s == StatusSuccess || s == StatusError
}

// User-facing messages for each stage.
const (
	MessageMissingToken = "Invalid or missing verification token. Please check your email or request a new verification link."
	MessageVerifying    = "Verifying your email..."
	MessageSuccess      = "Email verified successfully! Redirecting to sign in..."
	MessageInvalidToken = "This verification link is invalid or has expired. Please request a new verification email."
)

// View is what a page renders for the current stage.
type View struct {
	Status  Status
	Message string

	// RedirectTo is set once a success redirect has been scheduled.
	RedirectTo string
}

// Title returns the page heading for the stage.
func (v View) Title() string {
	switch v.Status {
	case StatusSuccess:
		return "Email Verified!"
	case StatusError:
		return "Verification Failed"
	default:
		return "Verifying Email"
	}
}
