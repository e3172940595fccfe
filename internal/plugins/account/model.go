// Package account serves the account recovery pages: forgot password,
// reset password, and verify email. It never validates tokens or touches
// credentials itself; every decision is delegated to the backend auth API
// through internal/apiclient.
package account

import "time"

// User-facing messages.
const (
	// MessageResetLinkSent is shown for every accepted forgot-password
	// submission, whether or not the account exists.
	MessageResetLinkSent = "If an account exists with this email, you will receive a password reset link."

	MessageInvalidEmail      = "Please enter a valid email address."
	MessagePasswordRequired  = "Please enter a new password."
	MessagePasswordMismatch  = "Passwords do not match."
	MessageMissingResetToken = "This password reset link is invalid. Please request a new one."
)

// BannerKind selects the banner style.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the success/error message shown under a form.
type Banner struct {
	Kind BannerKind
	Text string
}

// --- Request DTOs (bound from HTTP requests) ---

// ForgotPasswordRequest holds the forgot-password form.
type ForgotPasswordRequest struct {
	Email string `form:"email"`
}

// ResetPasswordRequest holds the reset-password form.
type ResetPasswordRequest struct {
	Token    string `form:"token"`
	Password string `form:"password"`
	Confirm  string `form:"confirm"`
}

// VerifyEmailRequest holds the verify-email confirm post.
type VerifyEmailRequest struct {
	Token string `form:"token"`
}

// --- View models (passed from handler to templates) ---

// ForgotPasswordView is everything the forgot-password form renders.
type ForgotPasswordView struct {
	Email      string
	EmailError string
	Banner     *Banner
}

// ResetPasswordView is everything the reset-password form renders.
type ResetPasswordView struct {
	Token  string
	Banner *Banner

	// Disabled hides the form when there is no token to submit.
	Disabled bool
}

// VerifySettings configures the verify-email flow.
type VerifySettings struct {
	SignInPath    string
	RedirectDelay time.Duration
}
