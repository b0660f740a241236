package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrEmptyOutput is returned when an endpoint answers without any text.
var ErrEmptyOutput = errors.New("empty output")

// maxBodySnippet bounds the response body kept in a CallError.
const maxBodySnippet = 300

// CallError describes a failed call to one endpoint.
type CallError struct {
	Endpoint   string
	StatusCode int    // 0 when no HTTP response was received
	Body       string // truncated response body
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Unreachable reports whether the server could not be reached at all
// (connection refused, DNS failure, timeout) as opposed to rejecting the call.
func (e *CallError) Unreachable() bool {
	if e.StatusCode != 0 || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(e.Err, &opErr) || errors.As(e.Err, &netErr)
}

// IsUnreachable reports whether err contains an unreachable CallError.
func IsUnreachable(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Unreachable()
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > maxBodySnippet {
		s = s[:maxBodySnippet]
	}
	return s
}
