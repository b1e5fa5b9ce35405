package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Client sends requests relative to a base URL with a fixed header set
type Client struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client. headers are sent with every request.
func New(baseURL string, headers map[string]string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		headers:    make(map[string]string, len(headers)),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for k, v := range headers {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request
func (c *Client) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request
func (c *Client) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Patch issues a PATCH request
func (c *Client) Patch(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Options issues an OPTIONS request
func (c *Client) Options(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodOptions, path, body)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do performs an HTTP request. A *FormData body is sent as multipart form data,
// any other non-nil body is encoded as JSON. The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	url := c.baseURL + path

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *FormData:
		if err := b.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize form data: %w", err)
		}
		bodyReader = b.Reader()
		contentType = b.ContentType()
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("content-type", contentType)
	}

	c.logger.Debug("sending request", zap.String("method", method), zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	c.logger.Debug("received response", zap.String("url", url), zap.Int("status", resp.StatusCode))
	return resp, nil
}

// DecodeJSON reads and unmarshals a response body, closing it
func DecodeJSON(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// Drain discards and closes a response body
func Drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
