package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Config holds the settings a Client is built from. Nothing here is read
// from the environment; internal/config does that and passes it in.
type Config struct {
	// BaseURL is prefixed to every request path. Empty means relative,
	// same-origin paths.
	BaseURL string

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty.
	UserAgent string
}

// Client issues JSON requests against the auth API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Used by tests and
// by callers that need custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSpace(cfg.BaseURL),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOptions describes one request.
type RequestOptions struct {
	// Method defaults to GET.
	Method string

	// Body is JSON-encoded when non-nil.
	Body any

	// Headers are merged over the default Content-Type header.
	Headers http.Header
}

// URL returns the full request URL for path.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// RequestJSON performs the request and classifies the outcome. It never
// returns an error: transport failures, non-2xx responses and undecodable
// bodies are all folded into the Result.
func RequestJSON[T any](ctx context.Context, c *Client, path string, opts RequestOptions) Result[T] {
	url := c.URL(path)

	res, err := c.do(ctx, url, opts)
	if err != nil {
		slog.Warn("auth api request failed",
			slog.String("url", url),
			slog.Any("error", err),
		)
		return Failure[T](NetworkErrorMessage, 0)
	}
	defer res.Body.Close()

	raw, payload := readPayload(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := NormalizeError(payload)
		slog.Debug("auth api returned failure",
			slog.String("url", url),
			slog.Int("status", res.StatusCode),
			slog.String("message", msg),
		)
		return Failure[T](msg, res.StatusCode)
	}

	return Success(decodeData[T](raw, payload))
}

// do builds and sends the HTTP request.
func (c *Client) do(ctx context.Context, url string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vals := range opts.Headers {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return res, nil
}

// readPayload reads the body and decodes it as generic JSON. Read and
// decode failures both yield a nil payload.
func readPayload(r io.Reader) ([]byte, any) {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil
	}
	return raw, payload
}

// decodeData decodes a successful body into T. An absent or mismatched
// body yields the zero T.
func decodeData[T any](raw []byte, payload any) T {
	var data T
	if payload == nil {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		var zero T
		return zero
	}
	return data
}
