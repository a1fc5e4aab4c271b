package httpclient

import (
	"context"
	"time"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout               time.Duration     // Request timeout
	InsecureSkipVerify    bool              // Skip TLS verification
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	Proxy                 string            // Proxy URL
	UserAgent             string            // User-Agent header sent with every request
	CustomHeaders         map[string]string // Headers added to all requests
	MaxResponseBodySize   int64             // Response bytes kept, 0 for no limit
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		InsecureSkipVerify:    false,
		FollowRedirects:       true,
		MaxRedirects:          10,
		UserAgent:             "ingestor/1.0",
		CustomHeaders:         map[string]string{},
		MaxResponseBodySize:   1 << 20,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		MaxConnsPerHost:       0, // 0 means no limit
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
	}
}

// HTTPRequest represents an outbound request. Body is kept as bytes so the
// request can be replayed by the retry handler.
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
	Context context.Context
}

// HTTPResponse represents a fully read response
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
