// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (Redis client, API client, Echo
// instance) and wires it into the account plugin.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/authpages/internal/apiclient"
	"github.com/keyxmakerx/authpages/internal/apperror"
	"github.com/keyxmakerx/authpages/internal/config"
	"github.com/keyxmakerx/authpages/internal/middleware"
	"github.com/keyxmakerx/authpages/internal/templates/layouts"
	"github.com/keyxmakerx/authpages/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Redis stores verification outcomes when configured. Nil means the
	// in-memory store is used.
	Redis *redis.Client

	// API is the backend auth API.
	API apiclient.AuthAPI

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, rdb *redis.Client, api apiclient.AuthAPI) (*App, error) {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	// c.RealIP() keys the rate limiter, so only trust XFF from known proxies.
	if err := middleware.TrustedProxies(e, middleware.DefaultTrustedCIDRs); err != nil {
		return nil, fmt.Errorf("configuring trusted proxies: %w", err)
	}

	app := &App{
		Config: cfg,
		Redis:  rdb,
		API:    api,
		Echo:   e,
	}

	middleware.LayoutInjector = injectLayout

	app.setupMiddleware()

	e.HTTPErrorHandler = app.errorHandler

	// Serve static files (CSS, vendored htmx).
	e.Static("/static", "static")

	return app, nil
}

// injectLayout copies per-request layout data into the template context.
func injectLayout(c echo.Context, ctx context.Context) context.Context {
	ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
	return layouts.SetRequestID(ctx, middleware.GetRequestID(c))
}

// setupMiddleware registers global middleware on the Echo instance.
// The request logger is outermost so it sees the final status of every
// response, including recovered panics.
func (a *App) setupMiddleware() {
	// Request logging -- method, path, status, latency, request ID.
	a.Echo.Use(middleware.RequestLogger())

	// Panic recovery -- converts panics to 500 AppErrors.
	a.Echo.Use(middleware.Recovery())

	// Security headers -- CSP, X-Frame-Options, no-referrer, no-store.
	a.Echo.Use(middleware.SecurityHeaders())

	// CSRF -- double-submit cookie pattern on all state-changing requests.
	a.Echo.Use(middleware.CSRF())
}

// errorHandler is the custom Echo error handler. It maps AppErrors and
// Echo's HTTPErrors to responses: JSON for /api, the error page otherwise.
//
// For HTMX partial requests that hit errors, we set HX-Retarget and
// HX-Reswap headers so the error page replaces the full body instead of
// being swapped into the form.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message

		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
				slog.String("request_id", middleware.GetRequestID(c)),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok && msg != "" && msg != http.StatusText(code) {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
			slog.String("request_id", middleware.GetRequestID(c)),
		)
	}

	if isAPIRequest(c) {
		_ = c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}

	if err := middleware.Render(c, code, pages.ErrorPage(code, message, a.Config.Verify.SignInPath)); err != nil {
		slog.Error("rendering error page", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusForbidden:
		return "Your session has expired. Please reload the page and try again."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// isAPIRequest returns true if the request expects a JSON response.
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting auth pages server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
