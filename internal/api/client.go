// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Parlance platform API.
//
// The client attaches the stored access token to every request, normalizes
// every failure into an APIError, and transparently recovers from expired
// access tokens: on a 401 it performs exactly one silent refresh (shared
// across all concurrent requests) and retries the original request once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/morganforge/parlance/internal/credentials"
)

// Configuration constants for the platform API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// apiRoot is the versioned API root prepended to every path.
	apiRoot = "/api"

	// refreshPath is the token refresh endpoint. Requests to it bypass the
	// interceptor to avoid recursion.
	refreshPath = "/auth/token/refresh/"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared transport for all platform requests.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the HTTP client for the platform API.
//
// The Client is safe for concurrent use. Credential reads go through the
// injected store; the only code path that writes it is the refresh path.
type Client struct {
	baseURL    string
	store      credentials.Store
	httpClient *http.Client

	// streamClient has no timeout; streaming is context-controlled.
	streamClient *http.Client

	// limiter optionally throttles outbound requests client-side.
	limiter *rate.Limiter

	// refreshGroup guarantees a single in-flight refresh: all requests that
	// hit a 401 while a refresh is outstanding attach to the same call and
	// observe the same outcome.
	refreshGroup singleflight.Group

	// onSessionExpired is invoked after a terminal refresh failure, once the
	// credential store has been cleared.
	onSessionExpired func()

	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for non-streaming requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit throttles outbound requests to rps requests per second with
// the given burst. A zero rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithSessionExpiredHook registers the callback invoked when a token refresh
// fails terminally and the session must be torn down.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the platform at baseURL, reading and
// refreshing credentials through store.
func NewClient(baseURL string, store credentials.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		streamClient: &http.Client{
			Transport: sharedTransport,
			// No timeout for streaming - controlled via context
		},
		userAgent: "parlance/0.1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured platform base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// Do performs a JSON request against the platform API and decodes the
// response into out (which may be nil for endpoints whose body the caller
// ignores). Every failure is a *APIError.
//
// Path is relative to the versioned API root, e.g. "/llm/conversations/".
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	respBody, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// send executes one request through the auth-refresh interceptor and returns
// the raw response body.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newNetworkError(err)
		}
	}

	body, apiErr := c.roundTrip(ctx, method, path, payload)
	if apiErr == nil {
		return body, nil
	}

	// Anything but a 401 propagates unchanged, as does a 401 on the refresh
	// endpoint itself.
	if apiErr.Kind != KindAuth || path == refreshPath {
		return nil, apiErr
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		// Terminal: the session is gone. Surface the original failure.
		return nil, apiErr
	}

	// Exactly one retry per original request, with the fresh token.
	body, retryErr := c.roundTrip(ctx, method, path, payload)
	if retryErr != nil {
		return nil, retryErr
	}
	return body, nil
}

// roundTrip performs a single HTTP exchange. The request is rebuilt from the
// marshaled payload so a retry never reuses a consumed body.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, *APIError) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, newNetworkError(err)
	}

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// newRequest builds a request with auth and tracing headers attached.
func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiRoot+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Bearer header only when an access token is stored.
	if pair, ok := c.store.Get(); ok && pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}
	return req, nil
}

// readResponse reads the body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// LOGGING
// =============================================================================

// logRequest logs an outbound request.
// SECURITY: Never log headers (auth) or body (may contain user content).
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status and duration only.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API response: %d %s (%v)", resp.StatusCode, resp.Request.URL.Path, duration)
}
