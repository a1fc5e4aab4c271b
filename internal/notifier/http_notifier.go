package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/httpclient"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/rs/zerolog"
)

const (
	apiKeyHeader        = "apikey"
	maxLoggedBodyLength = 512
)

// ErrUnsupportedMethod is returned for verbs other than POST, PUT and GET.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// HTTPNotifier sends one request per ingested file.
type HTTPNotifier struct {
	client *httpclient.HTTPClient
	logger zerolog.Logger
}

// NewHTTPNotifier creates an HTTPNotifier whose client honours the
// configured transport settings.
func NewHTTPNotifier(cfg config.NotificationConfig, logger zerolog.Logger) (*HTTPNotifier, error) {
	client, err := newClientBuilder(cfg, logger).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create notification HTTP client: %w", err)
	}
	return NewHTTPNotifierWithClient(client, logger), nil
}

func newClientBuilder(cfg config.NotificationConfig, logger zerolog.Logger) *httpclient.HTTPClientBuilder {
	builder := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(cfg.Timeout()).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithProxy(cfg.Proxy).
		WithFollowRedirects(!cfg.DisableRedirects).
		WithMaxRedirects(cfg.MaxRedirects).
		WithMaxResponseBodySize(cfg.MaxResponseBodyBytes).
		WithHTTP2(!cfg.DisableHTTP2).
		WithRetries(cfg.RetryAttempts)

	if cfg.UserAgent != "" {
		builder.WithUserAgent(cfg.UserAgent)
	}
	for key, value := range cfg.Headers {
		builder.WithHeader(key, value)
	}
	if cfg.RetryAttempts > 0 && cfg.RetryBaseDelay() > 0 {
		retry := httpclient.DefaultRetryHandlerConfig()
		retry.MaxRetries = cfg.RetryAttempts
		retry.BaseDelay = cfg.RetryBaseDelay()
		if retry.MaxDelay < retry.BaseDelay {
			retry.MaxDelay = retry.BaseDelay
		}
		builder.WithRetryConfig(retry)
	}
	return builder
}

// NewHTTPNotifierWithClient creates an HTTPNotifier around an existing client.
func NewHTTPNotifierWithClient(client *httpclient.HTTPClient, logger zerolog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		client: client,
		logger: logger.With().Str("module", "HTTPNotifier").Logger(),
	}
}

// Notify sends the record to target and logs the outcome. It never fails
// the caller. The call is synchronous and each attempt is bounded by
// notification_config.timeout_seconds, so it holds the caller for at most
// timeout_seconds x (retry_attempts+1) plus the retry backoff.
func (n *HTTPNotifier) Notify(ctx context.Context, record models.ProcessedFileRecord, target config.APIConfig) {
	if !target.Enabled() {
		n.logger.Debug().Str("file", record.Name).Msg("No notification URL configured, skipping")
		return
	}

	err := n.Send(ctx, record, target)
	if err == nil {
		n.logger.Info().
			Str("file", record.Name).
			Str("method", target.HTTPMethod()).
			Str("url", target.URL).
			Msg("Notification sent")
		return
	}

	var notifyErr *models.NotificationError
	switch {
	case errors.As(err, &notifyErr) && notifyErr.StatusCode != 0:
		n.logger.Warn().
			Str("file", record.Name).
			Str("method", notifyErr.Method).
			Str("url", notifyErr.URL).
			Int("status_code", notifyErr.StatusCode).
			Str("response_body", bodyExcerpt(notifyErr.Err)).
			Msg("Notification endpoint returned non-success status")
	case errors.Is(err, ErrUnsupportedMethod):
		n.logger.Error().Err(err).Str("file", record.Name).Msg("Notification not sent")
	default:
		n.logger.Error().Err(err).Str("file", record.Name).Msg("Failed to send notification")
	}
}

// Send performs the notification and reports any failure as a
// *models.NotificationError. A non-2xx response is a failure.
func (n *HTTPNotifier) Send(ctx context.Context, record models.ProcessedFileRecord, target config.APIConfig) error {
	method := target.HTTPMethod()
	notifyErr := &models.NotificationError{URL: target.URL, Method: method}

	req := &httpclient.HTTPRequest{
		URL:     target.URL,
		Method:  method,
		Headers: map[string]string{"Accept": "application/json"},
		Context: ctx,
	}
	if target.APIKey != "" {
		req.Headers[apiKeyHeader] = target.APIKey
	}

	switch method {
	case http.MethodPost, http.MethodPut:
		body, err := json.Marshal(NewFilePayload(record))
		if err != nil {
			notifyErr.Err = fmt.Errorf("failed to marshal payload: %w", err)
			return notifyErr
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	case http.MethodGet:
		// Ping only.
	default:
		notifyErr.Err = fmt.Errorf("%w: %s", ErrUnsupportedMethod, target.Method)
		return notifyErr
	}

	resp, err := n.client.Do(req)
	if err != nil {
		notifyErr.Err = err
		if resp != nil {
			notifyErr.StatusCode = resp.StatusCode
		}
		return notifyErr
	}

	if !resp.IsSuccess() {
		notifyErr.StatusCode = resp.StatusCode
		notifyErr.Err = &httpclient.HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body), URL: target.URL}
		return notifyErr
	}
	return nil
}

func bodyExcerpt(err error) string {
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) {
		return ""
	}
	if len(httpErr.Body) > maxLoggedBodyLength {
		return httpErr.Body[:maxLoggedBodyLength] + "..."
	}
	return httpErr.Body
}
