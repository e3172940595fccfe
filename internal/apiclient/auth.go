package apiclient

import (
	"context"
	"net/http"
)

// Backend endpoint paths.
const (
	ForgotPasswordPath = "/api/auth/forgot-password"
	ResetPasswordPath  = "/api/auth/reset-password"
	VerifyEmailPath    = "/api/auth/verify-email"
)

// AuthAPI is the set of auth calls the pages make. *Client implements it.
type AuthAPI interface {
	ForgotPassword(ctx context.Context, email string) Result[MessageResponse]
	ResetPassword(ctx context.Context, token, password string) Result[MessageResponse]
	VerifyEmail(ctx context.Context, token string) Result[MessageResponse]
}

var _ AuthAPI = (*Client)(nil)

// ForgotPassword asks the backend to send a reset link to email.
// POST /api/auth/forgot-password {email}
func (c *Client) ForgotPassword(ctx context.Context, email string) Result[MessageResponse] {
	return RequestJSON[MessageResponse](ctx, c, ForgotPasswordPath, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email},
	})
}

// ResetPassword sets a new password using a reset token.
// POST /api/auth/reset-password {token, password}
func (c *Client) ResetPassword(ctx context.Context, token, password string) Result[MessageResponse] {
	return RequestJSON[MessageResponse](ctx, c, ResetPasswordPath, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token, "password": password},
	})
}

// VerifyEmail confirms an email address using a verification token.
// POST /api/auth/verify-email {token}
func (c *Client) VerifyEmail(ctx context.Context, token string) Result[MessageResponse] {
	return RequestJSON[MessageResponse](ctx, c, VerifyEmailPath, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token},
	})
}
