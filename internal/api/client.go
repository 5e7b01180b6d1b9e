// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/instalite-tui/internal/logging"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps a single backoff delay.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the largest response body accepted.
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent identifies the client to the backend.
	UserAgent = "instalite-tui/0.2.0"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnavailable wraps transport failures that outlived the retries.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrNotFound matches *Error values with status 404.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized matches *Error values with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// Error is a failure reported by the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// Is lets errors.Is match status classes against the sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Message returns the text to show a user for err.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return "Cannot reach the server. Check your connection and try again."
	}
	return fallback
}

// errorEnvelope is the backend's error body.
type errorEnvelope struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	log        logging.Logger
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			Timeout: DefaultTimeout,
		},
		maxRetries: DefaultMaxRetries,
		backoff:    retryBaseDelay,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		log:        logging.Nop(),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// WithTimeout sets the per-attempt timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the retry budget for transient errors.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	c.maxRetries = maxRetries
	return c
}

// WithBackoff sets the base backoff delay.
func (c *Client) WithBackoff(base time.Duration) *Client {
	c.backoff = base
	return c
}

// WithRateLimit caps outgoing attempts per second. Zero or less disables.
func (c *Client) WithRateLimit(perSecond float64) *Client {
	if perSecond <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return c
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// WithLogger sets the request logger.
func (c *Client) WithLogger(l logging.Logger) *Client {
	if l != nil {
		c.log = l.With("component", "api")
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostImageURL returns the URL of a post image file.
func (c *Client) PostImageURL(file string) string {
	if file == "" {
		return ""
	}
	return c.baseURL + "/posts/" + url.PathEscape(file)
}

// UserPhotoURL returns the URL of a profile photo file.
func (c *Client) UserPhotoURL(file string) string {
	if file == "" {
		return ""
	}
	return c.baseURL + "/users/" + url.PathEscape(file)
}

// =============================================================================
// REQUESTS
// =============================================================================

// request describes one logical call. body is kept as bytes so every retry
// can send it again.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

// retryable reports whether req may be sent again after a 5xx or a
// transport error. Writes are sent once: the backend may have applied one
// before failing, and a like toggle or comment must not be repeated.
func (r request) retryable() bool {
	return r.method == http.MethodGet || r.method == http.MethodHead
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("failed to marshal request: %w", err)
	}
	req.body = data
	req.contentType = "application/json"
	return req, nil
}

// do runs req and decodes a 2xx body into out (which may be nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	status, body, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		return decodeError(status, body)
	}

	// Some endpoints answer 200 with {"error": "..."}.
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != "" {
		return &Error{Status: status, Message: env.Error}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &Error{Status: status, Message: env.Error}
	}
	return &Error{Status: status, Message: strings.TrimSpace(string(body))}
}

// doWithRetry sends req, retrying transport errors and 5xx responses of
// retryable requests with exponential backoff. It returns the final status
// and body.
func (c *Client) doWithRetry(ctx context.Context, req request) (int, []byte, error) {
	requestID := uuid.NewString()
	var lastErr error

	retries := 0
	if req.retryable() {
		retries = c.maxRetries
	}
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(c.calculateBackoff(attempt - 1)):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}

		status, body, err := c.attempt(ctx, req, requestID)
		if err == nil && status < 500 {
			return status, body, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			if errors.Is(err, ErrResponseTooLarge) {
				return 0, nil, err
			}
			lastErr = err
			continue
		}
		lastErr = decodeError(status, body)
	}

	var apiErr *Error
	if errors.As(lastErr, &apiErr) {
		return 0, nil, lastErr
	}
	return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) attempt(ctx context.Context, req request, requestID string) (int, []byte, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq, req.contentType, requestID)

	c.logRequest(ctx, httpReq, requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.logResponse(ctx, resp, requestID, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// readResponse reads at most MaxResponseSize bytes.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return data, nil
}

func (c *Client) setHeaders(req *http.Request, contentType, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

// calculateBackoff returns the delay before retry number attempt+1.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := c.backoff * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// logRequest logs method and path only. Query strings carry the session
// identity and bodies carry passwords.
func (c *Client) logRequest(ctx context.Context, req *http.Request, requestID string) {
	c.log.Debug(ctx, "api request", "method", req.Method, "path", req.URL.Path, "request_id", requestID)
}

func (c *Client) logResponse(ctx context.Context, resp *http.Response, requestID string, d time.Duration) {
	c.log.Debug(ctx, "api response", "status", resp.StatusCode, "request_id", requestID, "duration", d)
}
