package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/logger"
	"github.com/nutriswap/backend/internal/metrics"
)

// DefaultTimeout bounds a request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of an upstream body is read into memory.
const maxBodyBytes = 16 << 20

// maxErrorBody caps the body kept on an UpstreamError.
const maxErrorBody = 512

// Options configures a single request.
type Options struct {
	Method  string
	Headers http.Header
	Body    []byte
	Timeout time.Duration
}

// Response is a fully read upstream response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client issues bounded HTTP requests to one named upstream.
type Client struct {
	name        string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	log         *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithRateLimit caps outbound requests per minute. Zero disables the limiter.
func WithRateLimit(perMinute int, burst int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.rateLimiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a fetch client for the named upstream.
func NewClient(name string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		name:       name,
		httpClient: &http.Client{},
		userAgent:  "nutriswap/1.0",
		log:        logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do issues a request and waits at most opts.Timeout for the complete body.
// It never retries. Failures are reported as domain.ErrTimeout,
// domain.ErrNetworkFailure or *domain.UpstreamError; a canceled parent
// context is returned as is.
func (c *Client) Do(ctx context.Context, url string, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, reqCtx, start, url, err)
	}
	defer resp.Body.Close()

	// A stalled body counts against the same deadline.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail(ctx, reqCtx, start, url, err)
	}

	elapsed := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(c.name).Observe(elapsed.Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues(c.name, "status").Inc()
		c.log.Warn("Upstream returned error status",
			zap.String("upstream", c.name),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: truncate(string(data), maxErrorBody)}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(c.name, "ok").Inc()
	c.log.Debug("Upstream request completed",
		zap.String("upstream", c.name),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", elapsed))

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// fail classifies a transport error.
func (c *Client) fail(parent, reqCtx context.Context, start time.Time, url string, err error) error {
	elapsed := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(c.name).Observe(elapsed.Seconds())

	var outcome string
	var result error
	switch {
	case parent.Err() != nil && !errors.Is(parent.Err(), context.DeadlineExceeded):
		outcome, result = "canceled", parent.Err()
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded) || isTimeout(err):
		outcome, result = "timeout", fmt.Errorf("%w after %s: %v", domain.ErrTimeout, elapsed.Round(time.Millisecond), err)
	default:
		outcome, result = "network", fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(c.name, outcome).Inc()
	c.log.Warn("Upstream request failed",
		zap.String("upstream", c.name),
		zap.String("url", url),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))
	return result
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
