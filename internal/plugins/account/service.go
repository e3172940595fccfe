package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/keyxmakerx/authpages/internal/apiclient"
	"github.com/keyxmakerx/authpages/internal/apperror"
	"github.com/keyxmakerx/authpages/internal/verification"
)

// AccountService is what handlers call. It turns API results into errors
// carrying user-safe messages.
type AccountService interface {
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error

	// Verify confirms an email verification token. It satisfies
	// verification.Verifier.
	Verify(ctx context.Context, token string) (string, error)
}

// accountService implements AccountService on top of the auth API client.
type accountService struct {
	api apiclient.AuthAPI
}

// NewAccountService creates a service that calls api.
func NewAccountService(api apiclient.AuthAPI) AccountService {
	return &accountService{api: api}
}

var _ verification.Verifier = (AccountService)(nil)

// RequestPasswordReset asks the backend to send a reset link. The backend
// answers the same way for known and unknown emails, so success here says
// nothing about whether the account exists.
func (s *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	res := s.api.ForgotPassword(ctx, email)
	if !res.OK {
		return resultError(res)
	}
	slog.Info("password reset requested")
	return nil
}

// ResetPassword submits a new password with its reset token.
func (s *accountService) ResetPassword(ctx context.Context, token, password string) error {
	res := s.api.ResetPassword(ctx, token, password)
	if !res.OK {
		return resultError(res)
	}
	slog.Info("password reset completed")
	return nil
}

// Verify confirms an email verification token. Failures that say nothing
// about the token (unreachable backend, throttling, backend 5xx) are marked
// transient so they are not replayed.
func (s *accountService) Verify(ctx context.Context, token string) (string, error) {
	res := s.api.VerifyEmail(ctx, token)
	if res.OK {
		return res.Data.Message, nil
	}

	err := resultError(res)
	if isTransient(res) {
		return "", fmt.Errorf("%w: %w", verification.ErrTransient, err)
	}
	return "", err
}

// isTransient reports whether a failed result could succeed on retry with
// the same token.
func isTransient[T any](res apiclient.Result[T]) bool {
	if !res.HasStatus() || res.Status >= http.StatusInternalServerError {
		return true
	}
	switch res.Status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return false
}

// resultError converts a failed Result into an AppError.
func resultError[T any](res apiclient.Result[T]) error {
	if !res.HasStatus() {
		return apperror.NewUnavailable(res.Error)
	}
	return apperror.NewUpstream(res.Status, res.Error)
}

// userMessage extracts the message to show for err, stripped of markup.
func userMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return cleanMessage(appErr.Message)
	}
	return apiclient.DefaultErrorMessage
}
