package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient wraps net/http.Client with default headers, bounded response
// reads and an optional retry handler.
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	logger = logger.With().Str("component", "HTTPClient").Logger()

	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("follow_redirects", config.FollowRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// SetRetryHandler installs or removes (nil) the retry handler.
func (c *HTTPClient) SetRetryHandler(rh *RetryHandler) {
	c.retryHandler = rh
}

// Do performs an HTTP request, with retries if a retry handler is configured.
// Non-2xx responses are returned without error unless retries ran out on a
// retryable status.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	if c.retryHandler != nil {
		ctx := req.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return c.retryHandler.DoWithRetry(ctx, c.do, req)
	}
	return c.do(req)
}

func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	// Config headers first, request headers may override them.
	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, NewNetworkError(req.URL, "request failed", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.config.MaxResponseBodySize > 0 {
		reader = io.LimitReader(resp.Body, c.config.MaxResponseBodySize)
	}
	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewNetworkError(req.URL, "failed to read response body", err)
	}
	// Drain the rest so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       bodyBytes,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}
