package advisor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the class of advisory failure.
type ErrorCode string

const (
	// ErrRateLimited means the remote provider returned HTTP 429 or an
	// equivalent quota signal. Retryable.
	ErrRateLimited ErrorCode = "RATE_LIMITED"
	// ErrUnavailable covers network failures and provider 5xx responses.
	ErrUnavailable ErrorCode = "UNAVAILABLE"
	// ErrInvalidRequest covers provider rejections of the request itself.
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrMalformedResponse means the provider answered but the payload could
	// not be parsed into the expected shape.
	ErrMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// Error is a structured error for remote advisory failures.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRateLimited reports whether err carries the rate-limit/quota signal,
// either as a typed *Error or, for errors that escaped boundary
// classification, as a "429" substring in the message. The substring check is
// the provider's de facto wire contract and must be preserved.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var advErr *Error
	if errors.As(err, &advErr) {
		return advErr.Code == ErrRateLimited
	}
	return strings.Contains(err.Error(), "429")
}

// isRetryable reports whether the retry loop should attempt err again.
// Only the rate-limit signal is retried; everything else propagates
// immediately so a permanently failing provider does not stall callers.
func isRetryable(err error) bool {
	var advErr *Error
	if errors.As(err, &advErr) {
		return advErr.Retryable
	}
	return IsRateLimited(err)
}
