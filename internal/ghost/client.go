// Package ghost is a small client for the Ghost Admin API, covering the
// post reads and writes the batch tools need.
package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIVersion = "v5.0"
	defaultPageSize   = 100
)

// Client communicates with the Ghost Admin API.
type Client struct {
	baseURL    string
	key        adminKey
	version    string
	pageSize   int
	httpClient *http.Client
	limiter    *RateLimiter
	backoff    func(attempt int) time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithAPIVersion sets the Accept-Version header. Default: v5.0.
func WithAPIVersion(v string) Option { return func(c *Client) { c.version = v } }

// WithRateLimit caps request throughput. Default: 5 req/s, burst 10.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = NewRateLimiter(rps, burst) }
}

// WithPageSize sets the page size used by FetchAll. Default: 100.
func WithPageSize(n int) Option { return func(c *Client) { c.pageSize = n } }

// NewClient creates a client for the site at baseURL using an Admin API
// key of the form "<id>:<hex secret>".
func NewClient(baseURL, adminKey string, opts ...Option) (*Client, error) {
	key, err := parseAdminKey(adminKey)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		key:      key,
		version:  DefaultAPIVersion,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: Backoff,
	}
	for _, o := range opts {
		o(c)
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter(0, 0)
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	return c, nil
}

// do sends one Admin API request, retrying transient failures with
// backoff. body is re-read on every attempt.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	u := c.baseURL + "/ghost/api/admin/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := range MaxRetries {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = c.send(ctx, method, u, body, out)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, u string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	token, err := c.key.token(time.Now())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Ghost "+token)
	httpReq.Header.Set("Accept-Version", c.version)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.Pause(retryAfter(resp.Header.Get("Retry-After")))
		}
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &parsed) == nil && len(parsed.Errors) > 0 {
		apiErr.Message = parsed.Errors[0].Message
		apiErr.Type = parsed.Errors[0].Type
	}
	return apiErr
}

func retryAfter(v string) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return 0
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
