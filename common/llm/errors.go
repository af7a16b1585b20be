package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// FailureReason is the category of a failed completion.
type FailureReason string

const (
	ReasonNetwork     FailureReason = "network"
	ReasonTimeout     FailureReason = "timeout"
	ReasonCanceled    FailureReason = "canceled"
	ReasonAuth        FailureReason = "auth"
	ReasonRateLimited FailureReason = "rate_limited"
	ReasonRejected    FailureReason = "rejected"
	ReasonUpstream    FailureReason = "upstream"
	ReasonEmptyReply  FailureReason = "empty_reply"
)

// GatewayError is returned by every Client for any failed completion.
type GatewayError struct {
	Reason     FailureReason
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s (status %d): %v", e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Reason, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request could succeed later.
func (e *GatewayError) Retryable() bool {
	switch e.Reason {
	case ReasonNetwork, ReasonTimeout, ReasonRateLimited, ReasonUpstream:
		return true
	}
	return false
}

// IsRetryable reports whether err is a gateway error that could succeed on a later attempt.
func IsRetryable(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Retryable()
}

// ReasonOf extracts the failure reason of err, or "" when err is not a gateway error.
func ReasonOf(err error) FailureReason {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Reason
	}
	return ""
}

func classify(err error) *GatewayError {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	if errors.Is(err, context.Canceled) {
		return &GatewayError{Reason: ReasonCanceled, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Reason: ReasonTimeout, Err: err}
	}

	if status, ok := statusCodeOf(err); ok {
		return &GatewayError{Reason: reasonForStatus(status), StatusCode: status, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &GatewayError{Reason: ReasonTimeout, Err: err}
	}

	// No API response at all
	return &GatewayError{Reason: ReasonNetwork, Err: err}
}

func statusCodeOf(err error) (int, bool) {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode, true
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode, true
	}
	return 0, false
}

func reasonForStatus(status int) FailureReason {
	switch {
	case status == 401 || status == 403:
		return ReasonAuth
	case status == 429:
		return ReasonRateLimited
	case status >= 500:
		return ReasonUpstream
	default:
		return ReasonRejected
	}
}
