package config

import "time"

// NotificationConfig defines transport settings shared by every watch folder's notification target
type NotificationConfig struct {
	TimeoutSeconds       int               `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"min=1"`
	RetryAttempts        int               `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty" validate:"min=0,max=10"`
	RetryBaseDelayMillis int               `json:"retry_base_delay_ms,omitempty" yaml:"retry_base_delay_ms,omitempty" validate:"min=0"`
	InsecureSkipVerify   bool              `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	Proxy                string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	UserAgent            string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Headers              map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	MaxResponseBodyBytes int64             `json:"max_response_body_bytes,omitempty" yaml:"max_response_body_bytes,omitempty" validate:"min=0"`
	DisableRedirects     bool              `json:"disable_redirects,omitempty" yaml:"disable_redirects,omitempty"`
	MaxRedirects         int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0"`
	DisableHTTP2         bool              `json:"disable_http2,omitempty" yaml:"disable_http2,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		TimeoutSeconds:       DefaultNotificationTimeoutSeconds,
		RetryAttempts:        DefaultNotificationRetryAttempts,
		UserAgent:            DefaultNotificationUserAgent,
		MaxResponseBodyBytes: DefaultNotificationMaxResponseBodyBytes,
		MaxRedirects:         DefaultNotificationMaxRedirects,
	}
}

// Timeout returns the per-request timeout.
func (nc NotificationConfig) Timeout() time.Duration {
	return time.Duration(nc.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first backoff step, zero when unset.
func (nc NotificationConfig) RetryBaseDelay() time.Duration {
	return time.Duration(nc.RetryBaseDelayMillis) * time.Millisecond
}
