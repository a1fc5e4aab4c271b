package httpclient

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandler handles HTTP request retries with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// DefaultRetryHandlerConfig retries throttling and gateway errors.
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:   2,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		EnableJitter: true,
		RetryStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool, len(config.RetryStatusCodes))
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if a request should be retried based on status code
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay returns baseDelay * 2^attempt capped at maxDelay, plus up to
// 10% jitter when enabled.
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := rh.baseDelay
	for i := 0; i < attempt && delay < rh.maxDelay; i++ {
		delay *= 2
	}
	if rh.maxDelay > 0 && delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter && delay >= 10 {
		delay += rand.N(delay / 10)
	}

	return delay
}

// WaitForRetry waits for the calculated delay before retrying
func (rh *RetryHandler) WaitForRetry(ctx context.Context, attempt int, statusCode int, url string) error {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Warn().
		Str("url", url).
		Int("status_code", statusCode).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Request failed, waiting before retry")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry executes an HTTP request with retry logic
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var lastResp *HTTPResponse
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := doFunc(req)
		if err != nil {
			lastErr = err
			lastResp = nil

			if attempt < rh.maxRetries {
				if err := rh.WaitForRetry(ctx, attempt, 0, req.URL); err != nil {
					return nil, err
				}
				continue
			}
			break
		}

		lastResp = resp
		lastErr = nil

		if rh.ShouldRetry(resp.StatusCode, attempt) {
			if err := rh.WaitForRetry(ctx, attempt, resp.StatusCode, req.URL); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if lastErr != nil {
		return nil, WrapError(lastErr, "all retry attempts failed")
	}

	if lastResp != nil && rh.retryStatusCodes[lastResp.StatusCode] {
		err := NewHTTPErrorWithURL(lastResp.StatusCode, string(lastResp.Body), req.URL)
		return lastResp, WrapError(err, "all retry attempts failed")
	}

	return lastResp, nil
}
