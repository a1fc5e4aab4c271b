package httpclient

import (
	"fmt"
)

// Error represents a general error in the httpclient package.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an existing error with a message.
func WrapError(err error, message string) error {
	return &Error{Message: message, Err: err}
}

// NetworkError represents a transport-level failure.
type NetworkError struct {
	URL     string
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL '%s': %s: %v", e.URL, e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(url, message string, err error) error {
	return &NetworkError{URL: url, Message: message, Err: err}
}

// HTTPError represents an HTTP-level error (non-2xx status code).
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error for URL '%s': status %d, body: %s", e.URL, e.StatusCode, e.Body)
}

// NewHTTPErrorWithURL creates a new HTTPError.
func NewHTTPErrorWithURL(statusCode int, body string, url string) error {
	return &HTTPError{StatusCode: statusCode, Body: body, URL: url}
}
