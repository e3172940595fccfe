package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authpages/internal/apperror"
	"github.com/keyxmakerx/authpages/internal/middleware"
	"github.com/keyxmakerx/authpages/internal/plugins/account"
	"github.com/keyxmakerx/authpages/internal/verification"
)

// RegisterRoutes sets up all application routes. This is the single place
// where plugin routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container monitoring.
	e.GET("/healthz", a.healthz)

	// --- Account plugin ---
	accountService := account.NewAccountService(a.API)
	accountHandler := account.NewHandler(accountService,
		account.VerifySettings{
			SignInPath:    a.Config.Verify.SignInPath,
			RedirectDelay: a.Config.Verify.RedirectDelay,
		},
		verification.WithOutcomeStore(a.outcomeStore(), a.Config.Verify.OutcomeTTL),
	)
	limiter := middleware.NewIPRateLimiter(a.Config.RateLimitPerMinute, time.Minute)
	account.RegisterRoutes(e, accountHandler, limiter, middleware.NewSubmitGuard())

	// Anything else renders the 404 page.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return apperror.NewNotFound("The page you're looking for doesn't exist or has been moved.")
	})
}

// outcomeStore picks where verification outcomes are replayed from.
func (a *App) outcomeStore() verification.OutcomeStore {
	if a.Redis != nil {
		return verification.NewRedisStore(a.Redis)
	}
	return verification.NewMemoryStore()
}

// healthz reports whether the server and, when configured, Redis are up.
// The backend API is not probed; its health is its own concern.
func (a *App) healthz(c echo.Context) error {
	if a.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"redis":  err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
