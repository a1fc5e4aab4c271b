package httpclient

import (
	"time"

	"github.com/rs/zerolog"
)

// HTTPClientBuilder builds HTTP clients with fluent interface
type HTTPClientBuilder struct {
	config      HTTPClientConfig
	retryConfig *RetryHandlerConfig
	logger      zerolog.Logger
}

// NewHTTPClientBuilder creates a new HTTPClientBuilder with default configuration
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// WithTimeout sets the request timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithInsecureSkipVerify sets whether to skip TLS verification
func (b *HTTPClientBuilder) WithInsecureSkipVerify(skip bool) *HTTPClientBuilder {
	b.config.InsecureSkipVerify = skip
	return b
}

// WithFollowRedirects sets whether to follow redirects
func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.config.FollowRedirects = follow
	return b
}

// WithMaxRedirects sets the maximum number of redirects to follow
func (b *HTTPClientBuilder) WithMaxRedirects(max int) *HTTPClientBuilder {
	b.config.MaxRedirects = max
	return b
}

// WithProxy routes requests through proxyURL. Empty falls back to the
// environment's proxy settings.
func (b *HTTPClientBuilder) WithProxy(proxyURL string) *HTTPClientBuilder {
	b.config.Proxy = proxyURL
	return b
}

// WithUserAgent sets the User-Agent header
func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// WithHeader adds a header sent with every request
func (b *HTTPClientBuilder) WithHeader(key, value string) *HTTPClientBuilder {
	b.config.CustomHeaders[key] = value
	return b
}

// WithMaxResponseBodySize caps how much of a response body is kept (0 for no limit)
func (b *HTTPClientBuilder) WithMaxResponseBodySize(size int64) *HTTPClientBuilder {
	b.config.MaxResponseBodySize = size
	return b
}

// WithHTTP2 enables or disables HTTP/2 support
func (b *HTTPClientBuilder) WithHTTP2(enabled bool) *HTTPClientBuilder {
	b.config.EnableHTTP2 = enabled
	return b
}

// WithRetries installs a retry handler. maxRetries <= 0 disables retries.
func (b *HTTPClientBuilder) WithRetries(maxRetries int) *HTTPClientBuilder {
	if maxRetries <= 0 {
		b.retryConfig = nil
		return b
	}
	cfg := DefaultRetryHandlerConfig()
	cfg.MaxRetries = maxRetries
	b.retryConfig = &cfg
	return b
}

// WithRetryConfig installs a retry handler with full control over backoff.
func (b *HTTPClientBuilder) WithRetryConfig(cfg RetryHandlerConfig) *HTTPClientBuilder {
	b.retryConfig = &cfg
	return b
}

// Build creates and returns a new HTTPClient
func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	client, err := NewHTTPClient(b.config, b.logger)
	if err != nil {
		return nil, err
	}
	if b.retryConfig != nil {
		client.SetRetryHandler(NewRetryHandler(*b.retryConfig, b.logger))
	}
	return client, nil
}
