// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors returned by the index client.
var (
	// ErrRateLimited indicates the index kept answering 429 after retries.
	ErrRateLimited = errors.New("arXiv rate limit exceeded")

	// ErrUnavailable indicates a 5xx response after retries.
	ErrUnavailable = errors.New("arXiv unavailable")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from arXiv")
)

// APIError is a non-200 response from the index.
type APIError struct {
	StatusCode int
	Op         string // "lookup", "title", or "author"
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arXiv %s query returned HTTP %d", e.Op, e.StatusCode)
}

// Unwrap maps the status onto the package sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrUnavailable
	}
	return nil
}
