// Package main is the entry point for the auth pages server. It loads
// configuration, connects to the optional Redis store, builds the backend
// API client, and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/authpages/internal/apiclient"
	"github.com/keyxmakerx/authpages/internal/app"
	"github.com/keyxmakerx/authpages/internal/config"
	"github.com/keyxmakerx/authpages/internal/database"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg)

	slog.Info("starting auth pages",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
	)

	// --- Connect to Redis (optional) ---
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = database.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to Redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		slog.Info("connected to Redis")
	} else {
		slog.Info("REDIS_URL not set, keeping verification outcomes in memory")
	}

	// --- Backend API client ---
	// The API is usually served from the same origin behind a proxy, so an
	// unset base URL means this server's own public URL.
	apiBase := cfg.APIBaseURL()
	if cfg.APIIsSelf() {
		slog.Warn("auth API base URL is this server's own BASE_URL; /api/auth/* must be routed to the backend by a proxy or every submission will fail",
			slog.String("base_url", apiBase),
		)
	}
	api := apiclient.New(apiclient.Config{
		BaseURL:   apiBase,
		Timeout:   cfg.API.Timeout,
		UserAgent: "authpages",
	})
	slog.Info("using auth API", slog.String("base_url", apiBase))

	// --- Create Application ---
	application, err := app.New(cfg, rdb, api)
	if err != nil {
		slog.Error("failed to create app", slog.Any("error", err))
		os.Exit(1)
	}
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// setupLogging configures the global slog logger. Development uses text
// format for readability; production uses JSON for log aggregation. The
// level comes from LOG_LEVEL and falls back to info when unparseable.
func setupLogging(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
