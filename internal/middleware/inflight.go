package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authpages/internal/apperror"
)

// MessageInFlight is shown when a browser resubmits before the previous
// submission has been answered.
const MessageInFlight = "A request is already in progress. Please wait."

// SubmitGuard tracks which clients have a submission outstanding.
type SubmitGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewSubmitGuard creates an empty SubmitGuard.
func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{pending: make(map[string]struct{})}
}

// Acquire marks key busy. It returns a release func and true, or false if
// key is already busy. The release func is safe to call more than once.
func (g *SubmitGuard) Acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[key]; busy {
		return func() {}, false
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, true
}

// SingleSubmit returns middleware that rejects a submission while another
// from the same browser (CSRF cookie, falling back to IP) is in flight. The
// slot is released when the handler returns or panics.
func SingleSubmit(g *SubmitGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := GetCSRFToken(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			release, ok := g.Acquire(c.Path() + "|" + key)
			if !ok {
				return apperror.NewConflict(MessageInFlight)
			}
			defer release()

			return next(c)
		}
	}
}
