package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Verifier confirms a verification token with the backend. A nil error
// means the token was accepted; the returned string is the backend's
// message, used for logging only.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ErrTransient marks a Verifier failure that says nothing about the token
// itself, such as the backend being unreachable. Such outcomes are shown but
// never replayed.
var ErrTransient = errors.New("transient verification failure")

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (string, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// Redirector schedules a one-time navigation. Once scheduled, a redirect
// cannot be cancelled.
type Redirector interface {
	ScheduleRedirect(to string, after time.Duration)
}

// RedirectorFunc adapts a function to Redirector.
type RedirectorFunc func(to string, after time.Duration)

// ScheduleRedirect calls f.
func (f RedirectorFunc) ScheduleRedirect(to string, after time.Duration) {
	f(to, after)
}

// Defaults used when no Option overrides them.
const (
	DefaultSignInPath    = "/signin"
	DefaultRedirectDelay = 3 * time.Second
	DefaultOutcomeTTL    = 10 * time.Minute
)

// Option customizes a Controller.
type Option func(*Controller)

// WithSignInPath sets the success redirect destination.
func WithSignInPath(path string) Option {
	return func(c *Controller) { c.signInPath = path }
}

// WithRedirectDelay sets how long the success view shows before redirecting.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Controller) { c.redirectDelay = d }
}

// WithOutcomeStore replays resolved outcomes for the same token across
// page views for ttl.
func WithOutcomeStore(store OutcomeStore, ttl time.Duration) Option {
	return func(c *Controller) {
		c.store = store
		c.outcomeTTL = ttl
	}
}

// WithObserver registers fn to be called on every status change.
func WithObserver(fn func(View)) Option {
	return func(c *Controller) { c.observer = fn }
}

// Controller owns the verification attempt for one page view. It is safe
// for concurrent use; a second Mount with the same token waits for the
// first and returns its view without calling the Verifier again.
type Controller struct {
	verifier      Verifier
	redirector    Redirector
	store         OutcomeStore
	signInPath    string
	redirectDelay time.Duration
	outcomeTTL    time.Duration
	observer      func(View)

	mu      sync.Mutex
	mounted bool
	token   string
	view    View
}

// New creates a Controller for one page view.
func New(verifier Verifier, redirector Redirector, opts ...Option) *Controller {
	c := &Controller{
		verifier:      verifier,
		redirector:    redirector,
		signInPath:    DefaultSignInPath,
		redirectDelay: DefaultRedirectDelay,
		outcomeTTL:    DefaultOutcomeTTL,
		view:          View{Status: StatusVerifying},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initial returns the view to show before the attempt runs: verifying when
// a token is present, the missing-token error otherwise.
func Initial(token string) View {
	if token == "" {
		return View{Status: StatusError, Message: MessageMissingToken}
	}
	return View{Status: StatusVerifying, Message: MessageVerifying}
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Mount runs the attempt for token and returns the resolved view. Calling
// Mount again with the same token returns the existing view; a different
// token starts a fresh attempt.
func (c *Controller) Mount(ctx context.Context, token string) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted && c.token == token {
		return c.view
	}
	c.mounted = true
	c.token = token
	c.view = View{Status: StatusVerifying}

	if token == "" {
		c.set(StatusError, MessageMissingToken)
		return c.view
	}

	c.set(StatusVerifying, MessageVerifying)

	if outcome, ok := c.loadOutcome(ctx, token); ok {
		slog.Debug("replaying verification outcome", slog.String("status", outcome.Status.String()))
		c.apply(outcome.Status)
		return c.view
	}

	backendMsg, err := c.callVerifier(ctx, token)
	if err != nil {
		slog.Info("email verification failed", slog.Any("error", err))
		c.apply(StatusError)
	} else {
		slog.Info("email verified", slog.String("backend_message", backendMsg))
		c.apply(StatusSuccess)
	}

	// A cancelled request says nothing about the token.
	if ctx.Err() == nil && !errors.Is(err, ErrTransient) {
		c.saveOutcome(ctx, token, Outcome{Status: c.view.Status})
	}

	return c.view
}

// apply moves to a resolved status and runs its side effects.
func (c *Controller) apply(status Status) {
	switch status {
	case StatusSuccess:
		c.set(StatusSuccess, MessageSuccess)
		c.view.RedirectTo = c.signInPath
		if c.redirector != nil {
			c.redirector.ScheduleRedirect(c.signInPath, c.redirectDelay)
		}
	default:
		c.set(StatusError, MessageInvalidToken)
	}
}

// set changes status and message. A resolved view never goes back to
// verifying within the same attempt.
func (c *Controller) set(status Status, message string) {
	if c.view.Status.Resolved() && status == StatusVerifying {
		return
	}
	c.view.Status = status
	c.view.Message = message
	if c.observer != nil {
		c.observer(c.view)
	}
}

// callVerifier invokes the Verifier, turning a panic into an error.
func (c *Controller) callVerifier(ctx context.Context, token string) (msg string, err error) {
	if c.verifier == nil {
		return "", errors.New("no verifier configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("verifier panicked: %v", r)
		}
	}()
	return c.verifier.Verify(ctx, token)
}

func (c *Controller) loadOutcome(ctx context.Context, token string) (Outcome, bool) {
	if c.store == nil {
		return Outcome{}, false
	}
	outcome, ok, err := c.store.Load(ctx, TokenKey(token))
	if err != nil {
		slog.Warn("loading verification outcome", slog.Any("error", err))
		return Outcome{}, false
	}
	if !ok || !outcome.Status.Resolved() {
		return Outcome{}, false
	}
	return outcome, true
}

func (c *Controller) saveOutcome(ctx context.Context, token string, outcome Outcome) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, TokenKey(token), outcome, c.outcomeTTL); err != nil {
		slog.Warn("saving verification outcome", slog.Any("error", err))
	}
}
