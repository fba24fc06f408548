package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
)

// DefaultBaseURL is the default API base URL.
const DefaultBaseURL = "https://api.mistral.ai/v1"

// DefaultAPIKeyEnvVar is the environment variable name for the API key.
const DefaultAPIKeyEnvVar = "MISTRAL_API_KEY"

// requestIDHeader is the response header carrying the request correlation ID.
const requestIDHeader = "x-request-id"

// Client is the entry point for interacting with the API.
// Client is safe for concurrent use.
type Client struct {
	config    Config
	retry     RetryPolicy
	telemetry TelemetryHook
}

// New creates a new Client with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := Config{
		APIKey:     NewSecret(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{
		config:    cfg,
		retry:     DefaultRetryPolicy(),
		telemetry: NoopTelemetryHook{},
	}
	if cfg.Retry != nil {
		c.retry = cfg.Retry
	}
	if cfg.Telemetry != nil {
		c.telemetry = cfg.Telemetry
	}
	return c
}

// NewFromEnv creates a new Client using the MISTRAL_API_KEY environment
// variable. This is a convenience factory for quick setup:
//
//	client, err := mistral.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewFromEnv(opts ...Option) (*Client, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	return New(apiKey, opts...), nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// buildHeaders constructs the HTTP headers for an API request.
func (c *Client) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+c.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	if c.config.UserAgent != "" {
		headers.Set("User-Agent", c.config.UserAgent)
	}

	// Copy any extra headers
	for key, values := range c.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// newRequest creates an HTTP request against the configured base URL with
// authentication headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, newNetworkError(err)
	}
	for key, values := range c.buildHeaders() {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return req, nil
}

// doJSON executes a request with an optional JSON body and decodes the JSON
// response into out. Error responses are normalized into *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return newDecodeError(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return normalizeError(resp.StatusCode, respBody, resp.Header.Get(requestIDHeader))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return newDecodeError(err)
	}
	return nil
}

// doStream executes a request with stream=true semantics and returns the
// raw response body for SSE consumption. The caller owns closing the body.
func (c *Client) doStream(ctx context.Context, method, path string, in any, contentType string, body io.Reader) (io.ReadCloser, error) {
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, newDecodeError(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get(requestIDHeader))
	}

	return resp.Body, nil
}
