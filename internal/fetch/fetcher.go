package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the rate-limited HTTP fetcher.
//
// It is stateless apart from the timestamp of the last completed fetch,
// which enforces the politeness spacing. The pipeline is strictly
// sequential, so no locking is needed around that timestamp; exclusivity
// is structural.
type Client struct {
	// httpClient performs the actual requests. Its Timeout is the
	// per-attempt timeout.
	httpClient *http.Client

	// userAgent is sent with every request. The Wikimedia User-Agent
	// policy requires an identifying string.
	userAgent string

	// retries is the maximum number of attempts per logical fetch.
	retries int

	// backoff is the base of the linear backoff schedule: the sleep
	// before attempt n+1 is backoff * n.
	backoff time.Duration

	// delay is the minimum spacing between distinct logical fetches.
	// It is not applied between retry attempts of the same fetch.
	delay time.Duration

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// lastDone is when the previous successful fetch completed.
	lastDone time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Useful in tests and
// for callers that need custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRetries sets the maximum number of attempts per logical fetch.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithBackoff sets the linear backoff base between retry attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithDelay sets the politeness delay between distinct fetches.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// NewClient creates a Client with conservative defaults: 3 attempts,
// 2s backoff base, 1s politeness delay, 30s per-attempt timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		userAgent:   "wikiharvest/1.0",
		retries:     3,
		backoff:     2 * time.Second,
		delay:       1 * time.Second,
		maxBodySize: 10 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get performs one logical fetch of rawURL and returns the response body.
//
// The politeness delay is applied first: if the previous fetch completed
// less than the configured spacing ago, Get sleeps the remainder. Each
// attempt that fails (transport error or non-2xx status) is followed by
// a backoff sleep of backoff × attempt before the next try. When all
// attempts fail, the returned error is an *ExhaustedError wrapping the
// last underlying failure.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.waitPoliteness(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		body, err := c.attempt(ctx, rawURL)
		if err == nil {
			c.lastDone = time.Now()
			return body, nil
		}
		lastErr = err

		// Retrying a cancelled context is pointless.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < c.retries {
			if err := sleepCtx(ctx, c.backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, &ExhaustedError{URL: rawURL, Attempts: c.retries, Err: lastErr}
}

// attempt performs a single HTTP GET.
func (c *Client) attempt(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused, then report.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Best effort drain
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// waitPoliteness sleeps until the configured spacing from the previous
// fetch has elapsed.
func (c *Client) waitPoliteness(ctx context.Context) error {
	if c.delay <= 0 || c.lastDone.IsZero() {
		return nil
	}

	remaining := c.delay - time.Since(c.lastDone)
	if remaining <= 0 {
		return nil
	}

	return sleepCtx(ctx, remaining)
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
