package mistral

import (
	"net/http"
	"time"
)

// Config holds configuration for the Client.
type Config struct {
	// APIKey is the API key (required).
	APIKey Secret

	// BaseURL is the API base URL. Defaults to https://api.mistral.ai/v1
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Headers contains optional extra headers to include in requests.
	Headers http.Header

	// UserAgent is the optional User-Agent header value.
	UserAgent string

	// Retry is the optional retry policy applied to chat requests.
	Retry RetryPolicy

	// Telemetry is the optional request lifecycle hook.
	Telemetry TelemetryHook
}

// Option configures the Client.
type Option func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeader adds an extra header to include in requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithTimeout sets the request timeout by wrapping the HTTP client.
// A zero duration leaves the client's timeout unchanged.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d <= 0 {
			return
		}
		base := c.HTTPClient
		if base == nil {
			base = http.DefaultClient
		}
		clone := *base
		clone.Timeout = d
		c.HTTPClient = &clone
	}
}

// WithRetryPolicy sets the retry policy for chat requests.
func WithRetryPolicy(r RetryPolicy) Option {
	return func(c *Config) {
		c.Retry = r
	}
}

// WithTelemetry sets the telemetry hook.
func WithTelemetry(h TelemetryHook) Option {
	return func(c *Config) {
		c.Telemetry = h
	}
}
