// Package transport wraps outbound HTTP calls with bounded retries,
// exponential backoff, and per-attempt timeouts. Every adapter goes
// through one shared Client so failure classification is uniform.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
)

const (
	defaultMaxAttempts    = 3
	defaultBaseDelay      = 2 * time.Second
	defaultMaxDelay       = 15 * time.Second
	defaultRateLimitFloor = 10 * time.Second
	defaultTimeout        = 15 * time.Second
	defaultUserAgent      = "jobwatch/0.1 (+https://github.com/ncurl/jobwatch)"
)

// Request is the transport-level request descriptor. Body is a byte slice
// rather than a reader so the request can be replayed across attempts.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration // per-attempt; zero means the client default
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client executes requests with retry and backoff. Safe for concurrent use;
// the only shared mutable state is the jitter RNG, guarded by a mutex.
type Client struct {
	httpClient     *http.Client
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	rateLimitFloor time.Duration
	timeout        time.Duration
	userAgent      string
	logger         *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts sets the total attempt budget for one logical request.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base and maximum backoff delays.
func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.baseDelay = base
		}
		if max > 0 {
			c.maxDelay = max
		}
	}
}

// WithRateLimitFloor sets the minimum backoff after a 429 without Retry-After.
func WithRateLimitFloor(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rateLimitFloor = d
		}
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSeed makes the jitter sequence deterministic, for tests.
func WithSeed(seed uint64) Option {
	return func(c *Client) {
		c.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// New creates a Client with the given options.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{},
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		maxDelay:       defaultMaxDelay,
		rateLimitFloor: defaultRateLimitFloor,
		timeout:        defaultTimeout,
		userAgent:      defaultUserAgent,
		logger:         logger,
		rng:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes the request, retrying transient failures up to the attempt
// budget. It returns the response for any 2xx status; every other outcome
// is a classified error (*model.HTTPError for status failures). Exhausting
// the budget returns the last classified error, never a panic.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoffDelay(attempt-1, lastErr)
			c.logger.Warn("retrying after transient error",
				"url", req.URL,
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !isRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// attempt performs a single HTTP exchange under its own timeout. A timeout
// counts as a failed attempt, not a fatal error, as long as the parent
// context is still live.
func (c *Client) attempt(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", req.URL, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", req.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("request %s: unexpected status %d", req.URL, resp.StatusCode),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// backoffDelay computes the sleep before the next attempt: exponential from
// baseDelay with ±30% jitter, capped at maxDelay. A 429 uses the upstream
// Retry-After when present, and never sleeps less than the rate-limit floor.
func (c *Client) backoffDelay(retry int, err error) time.Duration {
	delay := c.baseDelay
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			delay = c.maxDelay
			break
		}
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (c.rand01()*2-1)*jitter)
	if delay > c.maxDelay {
		delay = c.maxDelay
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RateLimited() {
		if httpErr.RetryAfter > 0 {
			return httpErr.RetryAfter
		}
		if delay < c.rateLimitFloor {
			return c.rateLimitFloor
		}
	}

	return delay
}

func (c *Client) rand01() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64()
}

// isRetryable reports whether the failure is worth another attempt:
// network errors, per-attempt timeouts, 5xx, and 429. Other 4xx are
// permanent for this cycle.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	// Network errors, DNS failures, attempt timeouts.
	return true
}

// parseRetryAfter parses the seconds form of a Retry-After header value.
// Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(value, "%d", &secs); err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
