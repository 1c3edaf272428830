package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthRequired is returned when the backend rejects a call for a
// missing or invalid token. The UI should prompt re-authentication rather
// than show a bare error.
var ErrAuthRequired = errors.New("authentication required")

// RequestError is a non-2xx backend response. Detail carries the
// server-provided `detail` (or `error`) message verbatim when present.
type RequestError struct {
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// NetworkError is a transport-level failure: no response arrived at all.
// It also covers requests short-circuited by an open circuit breaker.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorBody matches both error shapes the backend emits: DRF uses
// {"detail": ...}, a few handlers use {"error": ...}.
type errorBody struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

func (b errorBody) message() string {
	if b.Detail != "" {
		return b.Detail
	}
	return b.Err
}
