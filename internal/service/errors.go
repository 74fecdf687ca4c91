package service

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrEmptyQuery is returned when a search is attempted with a blank query
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrRecipeNotFound is returned when a lookup matches no recipe
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrSessionNotFound is returned for unknown or expired session ids
	ErrSessionNotFound = errors.New("session not found")
)

// NetworkError reports a failed round trip to the recipe API: connectivity,
// timeouts and non-2xx responses.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error during %s: server returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("network error during %s: request timed out", e.Op)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that is not the expected JSON envelope.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error during %s: malformed response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
