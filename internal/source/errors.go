package source

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the source client.
var (
	// ErrNotFound indicates the batch URL or file does not exist.
	ErrNotFound = errors.New("batch not found")

	// ErrRateLimited indicates the data source refused the request with 429.
	ErrRateLimited = errors.New("data source rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with data source")

	// ErrInvalidResponse indicates a body that is not a graph batch.
	ErrInvalidResponse = errors.New("invalid response from data source")
)

// APIError represents an HTTP error status from the data source.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data source error (status %d): %s (url: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound returns true if the error indicates the batch does not exist.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
