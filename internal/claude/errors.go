package claude

import (
	"errors"
	"fmt"
)

// Boundary contract violations. Both abort the exchange before any
// transcript mutation.
var (
	// ErrEmptyResponse means the API returned no result at all.
	ErrEmptyResponse = errors.New("empty api response: no data received")

	// ErrMalformedResponse means the result lacked a content field.
	ErrMalformedResponse = errors.New("malformed api response: missing content field")
)

// DispatchError covers every other boundary failure: network, auth, quota,
// server errors. The exchange is aborted; there are no automatic retries.
type DispatchError struct {
	StatusCode int // 0 when the request never reached the API
	Message    string
}

func (e *DispatchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("dispatch failed: %s", e.Message)
	}
	return fmt.Sprintf("dispatch failed (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
