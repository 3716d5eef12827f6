// Package gql is a minimal GraphQL-over-HTTP transport.
//
// A call is a single POST of {query, variables}; the response's data is
// decoded into the caller's value and a non-empty errors list fails the call.
// The transport never retries.
package gql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Transport executes one GraphQL operation.
type Transport interface {
	Do(ctx context.Context, query string, variables map[string]any, out any) error
}

// Client is the HTTP Transport.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit paces outgoing requests to rps per second with the given
// burst. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a Client posting to endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// request is the POST body.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the envelope returned by the server.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorEntry    `json:"errors"`
}

// ErrorEntry is one element of the errors list.
type ErrorEntry struct {
	Message string `json:"message"`
}

// ResponseError is returned when the server reports GraphQL errors.
type ResponseError struct {
	Entries []ErrorEntry
}

func (e *ResponseError) Error() string {
	msgs := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		msgs[i] = entry.Message
	}
	return strings.Join(msgs, "\n")
}

// ErrEmptyData is returned when a response carries neither data nor errors.
var ErrEmptyData = errors.New("response has no data")

// Do posts the operation and decodes data into out (which may be nil).
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("graphql endpoint error (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
		}
		return fmt.Errorf("parse response: %w", err)
	}
	if len(env.Errors) > 0 {
		return &ResponseError{Entries: env.Errors}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql endpoint error (status %d)", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrEmptyData
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
