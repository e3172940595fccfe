// Package middleware provides HTTP middleware for the authpages Echo server.
// Middleware is applied globally in internal/app or per route in each
// plugin's routes.go.
package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// requestIDHeader carries the request ID in and out.
const requestIDHeader = "X-Request-ID"

// RequestLogger returns middleware that logs every HTTP request with
// structured fields: method, path, status, latency, remote IP and request ID.
// An incoming X-Request-ID is reused; otherwise a UUID is generated and
// echoed back on the response.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			// Let the error handler write the response first so the
			// logged status is the one the client sees.
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("request_id", reqID),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}

			// Query strings are not logged: they carry reset and
			// verification tokens.

			level := slog.LevelInfo
			if res.Status >= 500 {
				level = slog.LevelError
			} else if res.Status >= 400 {
				level = slog.LevelWarn
			}

			slog.LogAttrs(req.Context(), level, "request", attrs...)

			return nil
		}
	}
}

// GetRequestID returns the request ID assigned by RequestLogger, or "".
func GetRequestID(c echo.Context) string {
	id, _ := c.Get("request_id").(string)
	return id
}
