package account

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authpages/internal/apperror"
	"github.com/keyxmakerx/authpages/internal/middleware"
	"github.com/keyxmakerx/authpages/internal/verification"
)

// emailPattern is a shape check only; the backend decides what is deliverable.
// RE2's \s is ASCII-only, so wsClass adds vertical tab, Unicode separators
// and the BOM to match what browsers treat as whitespace.
var emailPattern = regexp.MustCompile(
	`^[^` + wsClass + `@]+@[^` + wsClass + `@]+\.[^` + wsClass + `@]+$`)

const wsClass = `\s\v\p{Z}\x{FEFF}`

// Handler handles HTTP requests for the account recovery pages. Handlers
// only check input shape; every decision about accounts and tokens is left
// to the backend.
type Handler struct {
	service AccountService
	verify  VerifySettings

	// verifyOpts are applied to every verification controller.
	verifyOpts []verification.Option
}

// NewHandler creates a new account handler.
func NewHandler(service AccountService, verify VerifySettings, verifyOpts ...verification.Option) *Handler {
	if verify.SignInPath == "" {
		verify.SignInPath = verification.DefaultSignInPath
	}
	if verify.RedirectDelay <= 0 {
		verify.RedirectDelay = verification.DefaultRedirectDelay
	}
	return &Handler{service: service, verify: verify, verifyOpts: verifyOpts}
}

// --- Forgot password ---

// ForgotPasswordForm renders the forgot password page (GET /forgot-password).
func (h *Handler) ForgotPasswordForm(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, ForgotPasswordPage(ForgotPasswordView{}, h.verify.SignInPath))
}

// ForgotPassword processes the forgot password form (POST /forgot-password).
// An accepted submission always shows the same banner so the response never
// reveals whether the email has an account.
func (h *Handler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	email := strings.TrimSpace(req.Email)
	if !isValidEmail(email) {
		return h.renderForgotPassword(c, ForgotPasswordView{
			Email:      req.Email,
			EmailError: MessageInvalidEmail,
			Banner:     &Banner{Kind: BannerError, Text: MessageInvalidEmail},
		})
	}

	if err := h.service.RequestPasswordReset(c.Request().Context(), email); err != nil {
		return h.renderForgotPassword(c, ForgotPasswordView{
			Email:  email,
			Banner: &Banner{Kind: BannerError, Text: userMessage(err)},
		})
	}

	// The field is cleared on success.
	return h.renderForgotPassword(c, ForgotPasswordView{
		Banner: &Banner{Kind: BannerSuccess, Text: MessageResetLinkSent},
	})
}

func (h *Handler) renderForgotPassword(c echo.Context, v ForgotPasswordView) error {
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, ForgotPasswordForm(v))
	}
	return middleware.Render(c, http.StatusOK, ForgotPasswordPage(v, h.verify.SignInPath))
}

// --- Reset password ---

// ResetPasswordForm renders the reset password page (GET /reset-password?token=...).
// The token is not checked here; the backend judges it on submit.
func (h *Handler) ResetPasswordForm(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return middleware.Render(c, http.StatusOK, ResetPasswordPage(ResetPasswordView{
			Disabled: true,
			Banner:   &Banner{Kind: BannerError, Text: MessageMissingResetToken},
		}, h.verify.SignInPath))
	}
	return middleware.Render(c, http.StatusOK, ResetPasswordPage(ResetPasswordView{Token: token}, h.verify.SignInPath))
}

// ResetPassword processes the new password form (POST /reset-password).
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	req.Token = strings.TrimSpace(req.Token)

	if req.Token == "" {
		return h.renderResetPassword(c, ResetPasswordView{
			Disabled: true,
			Banner:   &Banner{Kind: BannerError, Text: MessageMissingResetToken},
		})
	}
	if msg := validateResetPasswordRequest(&req); msg != "" {
		return h.renderResetPassword(c, ResetPasswordView{
			Token:  req.Token,
			Banner: &Banner{Kind: BannerError, Text: msg},
		})
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return h.renderResetPassword(c, ResetPasswordView{
			Token:  req.Token,
			Banner: &Banner{Kind: BannerError, Text: userMessage(err)},
		})
	}

	return middleware.Redirect(c, h.verify.SignInPath+"?reset=success")
}

func (h *Handler) renderResetPassword(c echo.Context, v ResetPasswordView) error {
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, ResetPasswordForm(v))
	}
	return middleware.Render(c, http.StatusOK, ResetPasswordPage(v, h.verify.SignInPath))
}

// --- Verify email ---

// VerifyEmailForm renders the first paint of the verify email page
// (GET /verify-email?token=...). A missing token is a terminal error and no
// backend call is made; otherwise the page shows the verifying state and
// posts the token to VerifyEmail on load.
func (h *Handler) VerifyEmailForm(c echo.Context) error {
	token := c.QueryParam("token")
	return middleware.Render(c, http.StatusOK, VerifyEmailPage(verification.Initial(token), token, h.verify))
}

// VerifyEmail runs the verification attempt (POST /verify-email/confirm).
func (h *Handler) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	opts := append([]verification.Option{
		verification.WithSignInPath(h.verify.SignInPath),
		verification.WithRedirectDelay(h.verify.RedirectDelay),
	}, h.verifyOpts...)

	ctrl := verification.New(h.service, responseRedirector{c: c}, opts...)
	view := ctrl.Mount(c.Request().Context(), req.Token)

	var page templ.Component
	if middleware.IsHTMX(c) {
		page = VerifyEmailCard(view, req.Token, h.verify)
	} else {
		page = VerifyEmailPage(view, req.Token, h.verify)
	}
	return middleware.Render(c, http.StatusOK, page)
}

// VerifyEmailContinue performs the scheduled post-verification redirect
// (GET /verify-email/continue). The destination is fixed server-side so
// this cannot be used as an open redirect.
func (h *Handler) VerifyEmailContinue(c echo.Context) error {
	return middleware.Redirect(c, h.verify.SignInPath)
}

// responseRedirector schedules the success redirect on the response. Plain
// page loads get a Refresh header; HTMX swaps follow the delayed trigger the
// card renders.
type responseRedirector struct {
	c echo.Context
}

// ScheduleRedirect implements verification.Redirector.
func (r responseRedirector) ScheduleRedirect(to string, after time.Duration) {
	r.c.Response().Header().Set("Refresh", fmt.Sprintf("%d; url=%s", int(after.Round(time.Second)/time.Second), to))
}

// --- Validation helpers ---

// isValidEmail reports whether value looks like an email address.
func isValidEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// validateResetPasswordRequest checks the reset form. Strength rules are
// left to the backend. Returns an error message or empty string.
func validateResetPasswordRequest(req *ResetPasswordRequest) string {
	if req.Password == "" {
		return MessagePasswordRequired
	}
	if req.Password != req.Confirm {
		return MessagePasswordMismatch
	}
	return ""
}
