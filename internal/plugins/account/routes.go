package account

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authpages/internal/middleware"
)

// RegisterRoutes sets up the account recovery routes. All are public.
//
// Submissions share one per-IP rate limiter and one submit guard so a
// browser can have at most one submission in flight per form.
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *middleware.IPRateLimiter, guard *middleware.SubmitGuard) {
	submit := []echo.MiddlewareFunc{
		middleware.RateLimitWith(limiter),
		middleware.SingleSubmit(guard),
	}

	e.GET("/forgot-password", h.ForgotPasswordForm)
	e.POST("/forgot-password", h.ForgotPassword, submit...)

	e.GET("/reset-password", h.ResetPasswordForm)
	e.POST("/reset-password", h.ResetPassword, submit...)

	e.GET("/verify-email", h.VerifyEmailForm)
	e.POST("/verify-email/confirm", h.VerifyEmail, submit...)
	e.GET("/verify-email/continue", h.VerifyEmailContinue)
}
