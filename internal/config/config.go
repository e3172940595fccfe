// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL of this front end.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// API holds settings for the backend auth API this front end calls.
	API APIConfig

	// Redis holds Redis connection settings. Optional.
	Redis RedisConfig

	// Verify holds email verification page settings.
	Verify VerifyConfig

	// RateLimitPerMinute caps form submissions per client IP.
	RateLimitPerMinute int
}

// APIConfig holds backend auth API settings.
type APIConfig struct {
	// BaseURL is prefixed to every API path. Empty means this server's own
	// BaseURL, for when a reverse proxy routes /api next to the pages.
	BaseURL string

	// Timeout bounds each outbound request.
	Timeout time.Duration
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	// Empty disables Redis; verification outcomes are then kept in memory.
	URL string
}

// Enabled returns true if a Redis URL was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// VerifyConfig holds settings for the verify-email flow.
type VerifyConfig struct {
	// SignInPath is where a successful verification redirects to.
	SignInPath string

	// RedirectDelay is how long the success view is shown before redirecting.
	RedirectDelay time.Duration

	// OutcomeTTL is how long a resolved verification is replayed for the
	// same token instead of calling the backend again.
	OutcomeTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if a value is present but unusable.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		API: APIConfig{
			BaseURL: strings.TrimSpace(getEnv("API_BASE_URL", "")),
			Timeout: getEnvDuration("API_TIMEOUT", 10*time.Second),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},

		Verify: VerifyConfig{
			SignInPath:    getEnv("SIGNIN_PATH", "/signin"),
			RedirectDelay: getEnvDuration("VERIFY_REDIRECT_DELAY", 3*time.Second),
			OutcomeTTL:    getEnvDuration("VERIFY_OUTCOME_TTL", 10*time.Minute),
		},

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive, got %s", cfg.API.Timeout)
	}
	if !strings.HasPrefix(cfg.Verify.SignInPath, "/") {
		return nil, fmt.Errorf("SIGNIN_PATH must be an absolute path, got %q", cfg.Verify.SignInPath)
	}
	if cfg.Verify.OutcomeTTL <= 0 {
		return nil, fmt.Errorf("VERIFY_OUTCOME_TTL must be positive, got %s", cfg.Verify.OutcomeTTL)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimitPerMinute)
	}

	return cfg, nil
}

// APIBaseURL returns the base URL API requests are sent to. An unset
// API_BASE_URL falls back to this server's own BaseURL.
func (c *Config) APIBaseURL() string {
	if c.API.BaseURL != "" {
		return c.API.BaseURL
	}
	return c.BaseURL
}

// APIIsSelf reports whether API requests would be sent back to this server,
// which serves no /api routes of its own.
func (c *Config) APIIsSelf() bool {
	return strings.TrimRight(c.APIBaseURL(), "/") == strings.TrimRight(c.BaseURL, "/")
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "10s") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
