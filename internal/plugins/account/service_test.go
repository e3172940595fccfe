package account

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/authpages/internal/apiclient"
	"github.com/keyxmakerx/authpages/internal/apperror"
	"github.com/keyxmakerx/authpages/internal/verification"
)

// --- Mock API ---

// mockAuthAPI implements apiclient.AuthAPI for testing.
type mockAuthAPI struct {
	forgotPasswordFn func(ctx context.Context, email string) apiclient.Result[apiclient.MessageResponse]
	resetPasswordFn  func(ctx context.Context, token, password string) apiclient.Result[apiclient.MessageResponse]
	verifyEmailFn    func(ctx context.Context, token string) apiclient.Result[apiclient.MessageResponse]

	forgotCalls int
	resetCalls  int
	verifyCalls int
}

func (m *mockAuthAPI) ForgotPassword(ctx context.Context, email string) apiclient.Result[apiclient.MessageResponse] {
	m.forgotCalls++
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return apiclient.Success(apiclient.MessageResponse{Message: "ok"})
}

func (m *mockAuthAPI) ResetPassword(ctx context.Context, token, password string) apiclient.Result[apiclient.MessageResponse] {
	m.resetCalls++
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, token, password)
	}
	return apiclient.Success(apiclient.MessageResponse{Message: "ok"})
}

func (m *mockAuthAPI) VerifyEmail(ctx context.Context, token string) apiclient.Result[apiclient.MessageResponse] {
	m.verifyCalls++
	if m.verifyEmailFn != nil {
		return m.verifyEmailFn(ctx, token)
	}
	return apiclient.Success(apiclient.MessageResponse{Message: "verified"})
}

func failWith(msg string, status int) apiclient.Result[apiclient.MessageResponse] {
	return apiclient.Failure[apiclient.MessageResponse](msg, status)
}

// --- Tests ---

func TestRequestPasswordReset_Success(t *testing.T) {
	api := &mockAuthAPI{}
	svc := NewAccountService(api)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "a@b.co"))
	assert.Equal(t, 1, api.forgotCalls)
}

func TestRequestPasswordReset_NetworkFailure(t *testing.T) {
	api := &mockAuthAPI{
		forgotPasswordFn: func(ctx context.Context, email string) apiclient.Result[apiclient.MessageResponse] {
			return failWith(apiclient.NetworkErrorMessage, 0)
		},
	}
	err := NewAccountService(api).RequestPasswordReset(context.Background(), "a@b.co")
	require.Error(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, apperror.SafeCode(err))
	assert.Equal(t, apiclient.NetworkErrorMessage, userMessage(err))
}

func TestResetPassword_BackendRejection(t *testing.T) {
	api := &mockAuthAPI{
		resetPasswordFn: func(ctx context.Context, token, password string) apiclient.Result[apiclient.MessageResponse] {
			assert.Equal(t, "tok", token)
			assert.Equal(t, "secret", password)
			return failWith("Token expired", http.StatusBadRequest)
		},
	}
	err := NewAccountService(api).ResetPassword(context.Background(), "tok", "secret")
	require.Error(t, err)

	assert.Equal(t, http.StatusBadRequest, apperror.SafeCode(err))
	assert.Equal(t, "Token expired", userMessage(err))
}

func TestVerify_MarksTransientFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"no response", 0, true},
		{"backend error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"throttled", http.StatusTooManyRequests, true},
		{"request timeout", http.StatusRequestTimeout, true},
		{"too early", http.StatusTooEarly, true},
		{"gone", http.StatusGone, false},
		{"bad token", http.StatusBadRequest, false},
		{"not found", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAuthAPI{
				verifyEmailFn: func(ctx context.Context, token string) apiclient.Result[apiclient.MessageResponse] {
					return failWith("nope", tt.status)
				},
			}
			_, err := NewAccountService(api).Verify(context.Background(), "tok")
			require.Error(t, err)
			assert.Equal(t, tt.transient, errors.Is(err, verification.ErrTransient))
		})
	}
}

func TestVerify_ReturnsBackendMessage(t *testing.T) {
	msg, err := NewAccountService(&mockAuthAPI{}).Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "verified", msg)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", apperror.NewUpstream(400, "Invalid token"), "Invalid token"},
		{"markup stripped", apperror.NewUpstream(400, `<b>Invalid</b> <script>alert(1)</script>token`), "Invalid token"},
		{"entities kept readable", apperror.NewUpstream(400, "Tom & Jerry's token"), "Tom & Jerry's token"},
		{"markup only", apperror.NewUpstream(400, "<img src=x>"), apiclient.DefaultErrorMessage},
		{"wrapped", errors.Join(errors.New("ctx"), apperror.NewUnavailable("down")), "down"},
		{"foreign error", errors.New("boom"), apiclient.DefaultErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
