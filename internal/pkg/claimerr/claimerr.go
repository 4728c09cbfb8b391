// Package claimerr defines the closed sum of domain errors the claim
// pipeline can return. The HTTP boundary (internal/handler/httperr) is
// the only place that switches on Kind to pick a status code and a
// stable string code; nothing upstream of that boundary does so.
package claimerr

import (
	"errors"
	"fmt"

	"gin-clean-starter/internal/pkg/errs"
)

type Kind string

const (
	KindLimitExceeded Kind = "LIMIT_EXCEEDED"
	KindRateLimited   Kind = "RATE_LIMIT_EXCEEDED"
	KindInvalidVoucher Kind = "INVALID_VOUCHER"
	KindInternal      Kind = "INTERNAL"
)

// Error is the single concrete type behind the closed sum; Kind picks
// the variant and Reason carries InvalidVoucher's associated data.
type Error struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

func LimitExceeded() *Error {
	return &Error{Kind: KindLimitExceeded}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited}
}

// InvalidVoucher carries the precise V2 ineligibility reason (format
// mismatch, unknown code, inactive, expired, exhausted, not-allowed-user,
// or already-claimed) so callers and audit entries can distinguish them
// without re-deriving the predicate.
func InvalidVoucher(reason string) *Error {
	return &Error{Kind: KindInvalidVoucher, Reason: reason}
}

// Internal wraps an unexpected failure (store/KV unavailable past the
// circuit breaker, or any other non-domain error) with errs.Wrap so the
// underlying stack is preserved for logging while the Kind stays opaque
// to callers in production.
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, cause: errs.Wrap(err, msg)}
}

func IsKind(err error, kind Kind) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}
