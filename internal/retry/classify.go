package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Class is the closed set of failure classifications.
type Class int

const (
	// ClassFatal failures propagate immediately without retrying.
	ClassFatal Class = iota

	// ClassTransient failures (timeouts, connection failures, 5xx) are
	// retried with exponential backoff.
	ClassTransient

	// ClassRateLimited failures (HTTP 429 / resource exhausted) are retried
	// with exponential backoff and logged at warning level.
	ClassRateLimited
)

// String returns the classification name for log fields.
func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassRateLimited:
		return "rate_limited"
	default:
		return "fatal"
	}
}

// statusCoder is implemented by remote API errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// Classify maps a remote-call failure to a retry classification.
//
// Permission and not-found errors are deliberately fatal: retrying them
// cannot succeed and only delays the caller.
func Classify(err error) Class {
	if err == nil {
		return ClassFatal
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch code := sc.HTTPStatus(); {
		case code == http.StatusTooManyRequests:
			return ClassRateLimited
		case code == http.StatusInternalServerError,
			code == http.StatusBadGateway,
			code == http.StatusServiceUnavailable,
			code == http.StatusGatewayTimeout:
			return ClassTransient
		case code >= 500 && code < 600:
			return ClassTransient
		default:
			return ClassFatal
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Connection refused, reset, DNS failure and friends.
		return ClassTransient
	}

	return ClassFatal
}
