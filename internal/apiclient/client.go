// Package apiclient is a thin JSON client for the wallet's backend services.
//
// Calls are single-attempt: the orchestrator deliberately never retries, so a
// failure always reaches the caller exactly once. Every POST carries an
// Idempotency-Key header so that a retrying transport added in front of this
// client cannot double-submit a write.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Client issues authenticated JSON requests against a single base URL.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a client for the given base URL and bearer token.
func New(baseURL, authToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{},
	}
}

// StatusError is a non-2xx response from the backend. Message is the
// backend-provided message when one was present, or a generic fallback.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Option adjusts a single request.
type Option func(*http.Request)

// AsUser attaches the explicit user-identity header required by some calls.
func AsUser(userID string) Option {
	return func(r *http.Request) {
		if userID != "" {
			r.Header.Set("X-User-ID", userID)
		}
	}
}

// Get issues a GET and decodes the response body into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, out interface{}, opts ...Option) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with a JSON body and decodes the response into out.
// body may be nil for bodyless triggers such as activation calls.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...Option) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, opts ...Option) error {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the backend's {"message"} field, falling back to a
// generic status line when the body is not parseable.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
}
