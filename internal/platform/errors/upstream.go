package errors

// Partner-API-specific helpers for mapping upstream HTTP failures to project
// ErrorCodes and retry semantics

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
)

// RetryableStatus reports whether an upstream HTTP status is worth retrying
// at the transport layer: rate limits and transient server-side failures
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// UpstreamErrorCode maps an upstream HTTP status to an ErrorCode with an ok flag
// !ok means the status is a success and no error should be built from it
func UpstreamErrorCode(status int) (ErrorCode, bool) {
	switch {
	case status >= 200 && status < 300:
		return ErrorCodeUnknown, false
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests, true
	case status == http.StatusUnauthorized:
		return ErrorCodeUnauthorized, true
	case status == http.StatusForbidden:
		return ErrorCodeForbidden, true
	case status == http.StatusNotFound:
		return ErrorCodeNotFound, true
	case RetryableStatus(status):
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeUpstream, true
	}
}

// IsTimeout reports whether the root cause is a network timeout or a canceled
// or deadline-expired context
func IsTimeout(err error) bool {
	root := Root(err)
	if stderrs.Is(root, context.DeadlineExceeded) || stderrs.Is(root, context.Canceled) {
		return true
	}
	var ne net.Error
	return stderrs.As(root, &ne) && ne.Timeout()
}

// IsRetryable reports whether err is safe to retry from the top of an invocation.
// Codes carry the decision: transient transport failures and rate limits are
// retryable, everything else (configuration, upstream rejection, unknown) is not
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}
	return IsTimeout(err)
}
