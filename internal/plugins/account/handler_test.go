package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/authpages/internal/apiclient"
	"github.com/keyxmakerx/authpages/internal/verification"
)

func newTestHandler(api *mockAuthAPI, opts ...verification.Option) *Handler {
	return NewHandler(NewAccountService(api), VerifySettings{
		SignInPath:    "/signin",
		RedirectDelay: 3 * time.Second,
	}, opts...)
}

// do runs handler against a request and returns the recorder.
func do(t *testing.T, handler echo.HandlerFunc, method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, handler(c))
	return rec
}

// --- Forgot password ---

func TestForgotPassword_InvalidEmailSkipsAPI(t *testing.T) {
	for _, email := range []string{"", "   ", "no-at-sign", "a@b", "a b@c.d"} {
		t.Run(email, func(t *testing.T) {
			api := &mockAuthAPI{}
			h := newTestHandler(api)

			rec := do(t, h.ForgotPassword, http.MethodPost, "/forgot-password", url.Values{"email": {email}}, true)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 0, api.forgotCalls)
			assert.Contains(t, rec.Body.String(), MessageInvalidEmail)
			assert.Contains(t, rec.Body.String(), `aria-invalid="true"`)
		})
	}
}

func TestForgotPassword_IdenticalResponseForAnyAccount(t *testing.T) {
	// The backend says different things internally; the page must not.
	api := &mockAuthAPI{
		forgotPasswordFn: func(ctx context.Context, email string) apiclient.Result[apiclient.MessageResponse] {
			if email == "known@example.com" {
				return apiclient.Success(apiclient.MessageResponse{Message: "sent"})
			}
			return apiclient.Success(apiclient.MessageResponse{Message: "no such user"})
		},
	}
	h := newTestHandler(api)

	known := do(t, h.ForgotPassword, http.MethodPost, "/forgot-password", url.Values{"email": {" known@example.com "}}, true)
	unknown := do(t, h.ForgotPassword, http.MethodPost, "/forgot-password", url.Values{"email": {"ghost@example.com"}}, true)

	assert.Equal(t, 2, api.forgotCalls)
	assert.Contains(t, known.Body.String(), MessageResetLinkSent)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.NotContains(t, known.Body.String(), "known@example.com")
}

func TestForgotPassword_TrimsEmailBeforeSending(t *testing.T) {
	var got string
	api := &mockAuthAPI{
		forgotPasswordFn: func(ctx context.Context, email string) apiclient.Result[apiclient.MessageResponse] {
			got = email
			return apiclient.Success(apiclient.MessageResponse{})
		},
	}
	do(t, newTestHandler(api).ForgotPassword, http.MethodPost, "/forgot-password", url.Values{"email": {"  a@b.co\t"}}, true)
	assert.Equal(t, "a@b.co", got)
}

func TestForgotPassword_BackendErrorIsShownWithoutMarkup(t *testing.T) {
	api := &mockAuthAPI{
		forgotPasswordFn: func(ctx context.Context, email string) apiclient.Result[apiclient.MessageResponse] {
			return apiclient.Failure[apiclient.MessageResponse](`<a href="https://evil.example">Too many</a> requests`, http.StatusTooManyRequests)
		},
	}
	rec := do(t, newTestHandler(api).ForgotPassword, http.MethodPost, "/forgot-password", url.Values{"email": {"a@b.co"}}, true)

	body := rec.Body.String()
	assert.Contains(t, body, "Too many requests")
	assert.NotContains(t, body, "evil.example")
	assert.Contains(t, body, "authMessage--error")
	assert.Contains(t, body, `value="a@b.co"`)
}

func TestForgotPassword_FullPageWithoutHTMX(t *testing.T) {
	rec := do(t, newTestHandler(&mockAuthAPI{}).ForgotPassword, http.MethodPost, "/forgot-password", url.Values{"email": {"a@b.co"}}, false)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "Forgot Password?")
	assert.Contains(t, body, MessageResetLinkSent)
}

func TestForgotPasswordForm_Renders(t *testing.T) {
	rec := do(t, newTestHandler(&mockAuthAPI{}).ForgotPasswordForm, http.MethodGet, "/forgot-password", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="forgot-password-form"`)
	assert.Contains(t, rec.Body.String(), `href="/signin"`)
}

// --- Reset password ---

func TestResetPasswordForm_MissingTokenDisablesForm(t *testing.T) {
	rec := do(t, newTestHandler(&mockAuthAPI{}).ResetPasswordForm, http.MethodGet, "/reset-password", nil, false)

	body := rec.Body.String()
	assert.Contains(t, body, MessageMissingResetToken)
	assert.NotContains(t, body, `name="password"`)
	assert.Contains(t, body, `href="/forgot-password"`)
}

func TestResetPasswordForm_CarriesToken(t *testing.T) {
	rec := do(t, newTestHandler(&mockAuthAPI{}).ResetPasswordForm, http.MethodGet, `/reset-password?token=abc%22def`, nil, false)
	assert.Contains(t, rec.Body.String(), `name="token" value="abc&#34;def"`)
}

func TestResetPassword_Validation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing token", url.Values{"password": {"a"}, "confirm": {"a"}}, MessageMissingResetToken},
		{"empty password", url.Values{"token": {"t"}, "password": {""}, "confirm": {""}}, MessagePasswordRequired},
		{"mismatch", url.Values{"token": {"t"}, "password": {"one"}, "confirm": {"two"}}, MessagePasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAuthAPI{}
			rec := do(t, newTestHandler(api).ResetPassword, http.MethodPost, "/reset-password", tt.form, true)

			assert.Equal(t, 0, api.resetCalls)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestResetPassword_SuccessRedirects(t *testing.T) {
	api := &mockAuthAPI{}
	h := newTestHandler(api)
	form := url.Values{"token": {"t"}, "password": {"pw"}, "confirm": {"pw"}}

	rec := do(t, h.ResetPassword, http.MethodPost, "/reset-password", form, true)
	assert.Equal(t, "/signin?reset=success", rec.Header().Get("HX-Redirect"))

	rec = do(t, h.ResetPassword, http.MethodPost, "/reset-password", form, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin?reset=success", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 2, api.resetCalls)
}

func TestResetPassword_BackendError(t *testing.T) {
	api := &mockAuthAPI{
		resetPasswordFn: func(ctx context.Context, token, password string) apiclient.Result[apiclient.MessageResponse] {
			return apiclient.Failure[apiclient.MessageResponse]("Reset token has expired", http.StatusBadRequest)
		},
	}
	form := url.Values{"token": {"t"}, "password": {"pw"}, "confirm": {"pw"}}
	rec := do(t, newTestHandler(api).ResetPassword, http.MethodPost, "/reset-password", form, true)

	assert.Empty(t, rec.Header().Get("HX-Redirect"))
	assert.Contains(t, rec.Body.String(), "Reset token has expired")
}

// --- Verify email ---

func TestVerifyEmailForm_MissingToken(t *testing.T) {
	api := &mockAuthAPI{}
	rec := do(t, newTestHandler(api).VerifyEmailForm, http.MethodGet, "/verify-email", nil, false)

	body := rec.Body.String()
	assert.Equal(t, 0, api.verifyCalls)
	assert.Contains(t, body, "Verification Failed")
	assert.Contains(t, body, verification.MessageMissingToken)
	assert.NotContains(t, body, `hx-post="/verify-email/confirm"`)
}

func TestVerifyEmailForm_StartsVerifying(t *testing.T) {
	api := &mockAuthAPI{}
	rec := do(t, newTestHandler(api).VerifyEmailForm, http.MethodGet, "/verify-email?token=abc", nil, false)

	body := rec.Body.String()
	assert.Equal(t, 0, api.verifyCalls)
	assert.Contains(t, body, "Verifying Email")
	assert.Contains(t, body, `hx-trigger="load"`)
	assert.Contains(t, body, `name="token" value="abc"`)
}

func TestVerifyEmail_Success(t *testing.T) {
	api := &mockAuthAPI{}
	rec := do(t, newTestHandler(api).VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, true)

	body := rec.Body.String()
	assert.Equal(t, 1, api.verifyCalls)
	assert.Contains(t, body, "Email Verified!")
	assert.Contains(t, body, verification.MessageSuccess)
	assert.Contains(t, body, `hx-trigger="load delay:3000ms"`)
	assert.Equal(t, []string{"3; url=/signin"}, rec.Header().Values("Refresh"))
}

func TestVerifyEmail_Failure(t *testing.T) {
	api := &mockAuthAPI{
		verifyEmailFn: func(ctx context.Context, token string) apiclient.Result[apiclient.MessageResponse] {
			return apiclient.Failure[apiclient.MessageResponse]("Invalid token", http.StatusBadRequest)
		},
	}
	rec := do(t, newTestHandler(api).VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, true)

	body := rec.Body.String()
	assert.Contains(t, body, "Verification Failed")
	assert.Contains(t, body, verification.MessageInvalidToken)
	assert.Contains(t, body, `href="/signup"`)
	assert.Empty(t, rec.Header().Get("Refresh"))
}

func TestVerifyEmail_MissingTokenSkipsAPI(t *testing.T) {
	api := &mockAuthAPI{}
	rec := do(t, newTestHandler(api).VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{}, true)

	assert.Equal(t, 0, api.verifyCalls)
	assert.Contains(t, rec.Body.String(), verification.MessageMissingToken)
}

func TestVerifyEmail_ReplaysStoredOutcome(t *testing.T) {
	api := &mockAuthAPI{}
	store := verification.NewMemoryStore()
	h := newTestHandler(api, verification.WithOutcomeStore(store, time.Minute))

	first := do(t, h.VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, true)
	second := do(t, h.VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, true)

	assert.Equal(t, 1, api.verifyCalls)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "3; url=/signin", second.Header().Get("Refresh"))
}

func TestVerifyEmail_ThrottledOutcomeNotReplayed(t *testing.T) {
	throttled := true
	api := &mockAuthAPI{
		verifyEmailFn: func(ctx context.Context, token string) apiclient.Result[apiclient.MessageResponse] {
			if throttled {
				return apiclient.Failure[apiclient.MessageResponse]("Too many requests", http.StatusTooManyRequests)
			}
			return apiclient.Success(apiclient.MessageResponse{Message: "verified"})
		},
	}
	h := newTestHandler(api, verification.WithOutcomeStore(verification.NewMemoryStore(), time.Minute))

	first := do(t, h.VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, true)
	assert.Contains(t, first.Body.String(), "Verification Failed")

	throttled = false
	second := do(t, h.VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, true)

	assert.Equal(t, 2, api.verifyCalls)
	assert.Contains(t, second.Body.String(), "Email Verified!")
}

func TestVerifyEmail_FullPageWithoutHTMX(t *testing.T) {
	rec := do(t, newTestHandler(&mockAuthAPI{}).VerifyEmail, http.MethodPost, "/verify-email/confirm", url.Values{"token": {"abc"}}, false)

	assert.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE html>"))
	assert.Equal(t, "3; url=/signin", rec.Header().Get("Refresh"))
}

func TestVerifyEmailContinue(t *testing.T) {
	h := NewHandler(NewAccountService(&mockAuthAPI{}), VerifySettings{SignInPath: "/login"})

	rec := do(t, h.VerifyEmailContinue, http.MethodGet, "/verify-email/continue", nil, true)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))

	rec = do(t, h.VerifyEmailContinue, http.MethodGet, "/verify-email/continue", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

// --- Helpers ---

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@sub.example.org", " padded@example.com "}
	invalid := []string{"", "plain", "@b.co", "a@", "a@b", "a@@b.co", "a b@c.de",
		"a\u00a0b@c.de", "a@b\u3000c.de", "a\ufeffb@c.de", "a@b.c\u2028d", "a\vb@c.de"}

	for _, v := range valid {
		assert.True(t, isValidEmail(v), v)
	}
	for _, v := range invalid {
		assert.False(t, isValidEmail(v), v)
	}
}
