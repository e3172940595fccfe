package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// csrfTokenLength is the number of random bytes in a CSRF token (32 bytes = 64 hex chars).
const csrfTokenLength = 32

// CSRFCookieName is the cookie that stores the CSRF token. It doubles as the
// per-browser key for the submit guard.
const CSRFCookieName = "authpages_csrf"

// csrfHeaderName is the header HTMX sends the token in.
const csrfHeaderName = "X-CSRF-Token"

// CSRFFormField is the hidden form field name for non-HTMX submissions.
const CSRFFormField = "csrf_token"

// CSRF returns middleware that implements the double-submit cookie pattern
// on all state-changing requests (POST, PUT, PATCH, DELETE).
//
//  1. If no CSRF cookie exists, generate one and set it.
//  2. On mutating requests, compare the cookie value with the X-CSRF-Token
//     header (HTMX) or the csrf_token form field (plain forms).
//  3. Reject mismatches with 403.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// JSON endpoints are not cookie-authenticated.
			if strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			cookieToken := ""
			if cookie, err := req.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
				cookieToken = cookie.Value
			} else {
				token, genErr := generateCSRFToken()
				if genErr != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate CSRF token")
				}
				c.SetCookie(&http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false, // Must be readable by JS for HTMX to send it.
					Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
					SameSite: http.SameSiteLaxMode,
				})
				cookieToken = token
			}
			c.Set("csrf_token", cookieToken)

			if isSafeMethod(req.Method) {
				return next(c)
			}

			submitted := req.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = req.FormValue(CSRFFormField)
			}

			// A freshly generated cookie can never match: the browser has not
			// seen it yet, so the submission predates it.
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}

			return next(c)
		}
	}
}

// isSafeMethod returns true for HTTP methods that should not change state.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// generateCSRFToken generates a cryptographically random hex-encoded token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetCSRFToken retrieves the CSRF token from the Echo context.
func GetCSRFToken(c echo.Context) string {
	if token, ok := c.Get("csrf_token").(string); ok {
		return token
	}
	return ""
}
