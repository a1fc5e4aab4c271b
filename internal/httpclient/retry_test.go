package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int, codes ...int) RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       maxRetries,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		RetryStatusCodes: codes,
	}
}

func TestRetryHandler(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body), "body is replayed on every attempt")

		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithRetryConfig(fastRetryConfig(3, http.StatusTooManyRequests)).
		Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodPost, Body: []byte("payload")})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
}

func TestRetryHandler_MaxRetriesExceeded(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithRetryConfig(fastRetryConfig(2, http.StatusServiceUnavailable)).
		Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.Error(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount)) // Initial call + 2 retries

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestRetryHandler_NonRetryableStatus(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithRetryConfig(fastRetryConfig(3, http.StatusServiceUnavailable)).
		Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
}

func TestRetryHandler_CalculateDelay(t *testing.T) {
	rh := NewRetryHandler(RetryHandlerConfig{
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  time.Second,
	}, zerolog.Nop())

	assert.Equal(t, 100*time.Millisecond, rh.CalculateDelay(0))
	assert.Equal(t, 200*time.Millisecond, rh.CalculateDelay(1))
	assert.Equal(t, 800*time.Millisecond, rh.CalculateDelay(3))
	assert.Equal(t, time.Second, rh.CalculateDelay(10))

	jittered := NewRetryHandler(RetryHandlerConfig{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		EnableJitter: true,
	}, zerolog.Nop())
	d := jittered.CalculateDelay(0)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.Less(t, d, 110*time.Millisecond)
}
