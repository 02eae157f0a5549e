package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound     = errors.New("tmdb: resource not found")
	ErrUnauthorized = errors.New("tmdb: credentials rejected")
	ErrUpstream     = errors.New("tmdb: upstream error")
	ErrUnavailable  = errors.New("tmdb: host unreachable or transport failure")
	ErrTimeout      = errors.New("tmdb: request timed out")
	ErrBadResponse  = errors.New("tmdb: invalid response format or malformed data")
	ErrCircuitOpen  = errors.New("tmdb: circuit breaker open")
)

// Error is a rich error type that wraps one of the sentinel errors with context.
type Error struct {
	Sentinel  error
	Operation string // upstream path, e.g. "/movie/550"
	Status    int    // upstream HTTP status, 0 for transport failures
	Message   string // upstream status_message when the body carried one
	Err       error  // Nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tmdb: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}

// UpstreamMessage returns the provider status_message carried by err, if any.
func UpstreamMessage(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Message
	}
	return ""
}

// sentinelForStatus maps a non-2xx upstream status onto a sentinel.
func sentinelForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrUpstream
	}
}

// sentinelForTransport classifies errors returned by http.Client.Do.
func sentinelForTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrUnavailable
}

// outcomeLabel is the metrics label for an upstream call result.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	default:
		return "upstream_error"
	}
}

// tripsBreaker reports whether err indicates an unhealthy upstream. Client
// errors and caller cancellation never count.
func tripsBreaker(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrBadResponse)
}
