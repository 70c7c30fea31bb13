package repository

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyBody is returned when a 2xx response carries no content.
	ErrEmptyBody = errors.New("response body is empty")
	// ErrRobotsDisallowed is returned when robots.txt forbids fetching a page.
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
	// ErrFetchTimeout is returned when a request exceeds its deadline.
	ErrFetchTimeout = errors.New("request timed out")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s (URL: %s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// StatusCodeOf extracts the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
