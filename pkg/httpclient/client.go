// Package httpclient provides a small retrying HTTP client for external APIs.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient defines the interface for HTTP client operations
type HTTPClient interface {
	Get(ctx context.Context, path string, headers map[string]string) (*http.Response, error)
	Post(ctx context.Context, path string, data any, headers map[string]string) (*http.Response, error)
	Put(ctx context.Context, path string, data any, headers map[string]string) (*http.Response, error)
	Delete(ctx context.Context, path string, headers map[string]string) (*http.Response, error)
	GetJSON(ctx context.Context, path string, result any, headers map[string]string) error
	Do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*http.Response, error)
	BaseURL() string
}

// Client represents an HTTP client with configurable settings
type Client struct {
	client     *http.Client
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	retryCount int
	logger     *slog.Logger
}

// New creates a new HTTP client with the provided options
func New(opts ...Option) HTTPClient {
	client := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.client.Timeout = client.timeout

	return client
}

// Get performs an HTTP GET request
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, headers)
}

// Post performs an HTTP POST request with JSON data
func (c *Client) Post(ctx context.Context, path string, data any, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewBuffer(body), headers)
}

// Put performs an HTTP PUT request with JSON data
func (c *Client) Put(ctx context.Context, path string, data any, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, bytes.NewBuffer(body), headers)
}

// Delete performs an HTTP DELETE request
func (c *Client) Delete(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, headers)
}

// Do performs an HTTP request with an arbitrary method and body
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, method, path, body, headers)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	var resp *http.Response
	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			break
		}
		if i == c.retryCount {
			break
		}

		// Exponential backoff with a small jitter between attempts
		backoff := time.Duration(1<<uint(i)) * time.Second
		jitter := time.Duration((i+1)*100) * time.Millisecond
		time.Sleep(backoff + jitter)

		if c.logger != nil {
			c.logger.Info("Retrying HTTP request", "attempt", i+1, "url", url, "error", lastErr.Error())
		}
	}

	if lastErr != nil {
		if c.logger != nil {
			c.logger.Error("HTTP request failed", "method", method, "url", url, "error", lastErr)
		}
		return nil, fmt.Errorf("request failed after %d retries: %w", c.retryCount, lastErr)
	}

	if c.logger != nil {
		c.logger.Debug("HTTP response", "method", method, "url", url, "status", resp.StatusCode)
	}

	return resp, nil
}

// GetJSON performs a GET request and unmarshals the response into result
func (c *Client) GetJSON(ctx context.Context, path string, result any, headers map[string]string) error {
	resp, err := c.Get(ctx, path, headers)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.Error("HTTP request failed", "path", path, "status", resp.StatusCode, "body", string(responseBody))
		}
		return fmt.Errorf("request failed with status: %d, body: %s", resp.StatusCode, string(responseBody))
	}

	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// BaseURL returns the base URL of the client
func (c *Client) BaseURL() string {
	return c.baseURL
}
