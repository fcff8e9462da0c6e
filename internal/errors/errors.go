// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a core failure so callers can branch on it without parsing
// messages.
type Kind string

const (
	// KindNotConnected means the user has no stored GitHub credential. This
	// is an expected state; the UI renders a "connect your account" prompt.
	KindNotConnected Kind = "NOT_CONNECTED"
	// KindInvalidArgument means the caller supplied malformed input.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	// KindNotFoundOrForbidden means a local record is missing or owned by
	// another user. The two cases are deliberately indistinguishable.
	KindNotFoundOrForbidden Kind = "NOT_FOUND_OR_FORBIDDEN"
	// KindUpstreamAuth means GitHub rejected the credential.
	KindUpstreamAuth Kind = "UPSTREAM_AUTH"
	// KindUpstreamRateLimit means GitHub rate-limited the request.
	KindUpstreamRateLimit Kind = "UPSTREAM_RATE_LIMIT"
	// KindUpstreamFetch covers all other upstream transport or schema failures.
	KindUpstreamFetch Kind = "UPSTREAM_FETCH"
	// KindActivityAggregationFailed is the opaque failure of the monthly
	// activity pipeline. No partial buckets accompany it.
	KindActivityAggregationFailed Kind = "ACTIVITY_AGGREGATION_FAILED"
	// KindInternal covers unexpected infrastructure faults.
	KindInternal Kind = "INTERNAL"
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a typed error wrapping an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal if err carries no kind.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

// IsNotConnected reports whether err means the user has no linked account.
func IsNotConnected(err error) bool {
	return IsKind(err, KindNotConnected)
}

// IsNotFoundOrForbidden reports whether err means a missing or foreign record.
func IsNotFoundOrForbidden(err error) bool {
	return IsKind(err, KindNotFoundOrForbidden)
}
