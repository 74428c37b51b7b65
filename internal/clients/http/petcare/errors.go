package petcare

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable marks failures where the backend could not be reached or answered with a 5xx.
var ErrUnavailable = errors.New("pet-care backend unavailable")

// errAbandoned marks a call whose context was cancelled or timed out before the backend answered.
var errAbandoned = errors.New("pet-care call abandoned")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Title
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return fmt.Sprintf("pet-care API error: %s (status %d)", msg, e.StatusCode)
}

// Is lets callers match server-side failures with errors.Is(err, ErrUnavailable).
func (e *APIError) Is(target error) bool {
	return target == ErrUnavailable && e.StatusCode >= http.StatusInternalServerError
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsClientError reports whether err is a 4xx from the backend.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
