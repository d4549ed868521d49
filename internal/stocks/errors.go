package stocks

import (
	"errors"
	"fmt"
)

// Kind is the closed set of caller-facing failure classes. Every error
// leaving this module carries exactly one of these; raw provider
// messages and HTTP statuses are kept as diagnostic context only.
type Kind string

const (
	// KindConfiguration: missing API credential. Fatal, not retryable.
	KindConfiguration Kind = "configuration_error"
	// KindInvalidSymbol: caller input malformed. Not retryable as-is.
	KindInvalidSymbol Kind = "invalid_symbol"
	// KindRateLimited: upstream quota exhausted. Retry after a cooldown
	// of at least a minute.
	KindRateLimited Kind = "rate_limited"
	// KindTimeout: no response within the request bound. Retryable.
	KindTimeout Kind = "timeout"
	// KindMalformedResponse: payload failed schema validation.
	KindMalformedResponse Kind = "malformed_response"
	// KindInvalidResponse: required fields missing from an otherwise
	// well-shaped payload.
	KindInvalidResponse Kind = "invalid_response"
	// KindProviderError: upstream returned an explicit error message.
	// Treated as non-retryable by default.
	KindProviderError Kind = "provider_error"
)

// Error is the classified error type shared by the provider client and
// the aggregation service.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error. cause may be nil.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from err, unwrapping as needed.
// Unclassified errors report KindProviderError so callers always see a
// member of the taxonomy.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindProviderError
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether a caller may reasonably retry without
// changing anything. Rate limits want a cooldown of about a minute
// first.
func Retryable(kind Kind) bool {
	switch kind {
	case KindRateLimited, KindTimeout, KindMalformedResponse, KindInvalidResponse:
		return true
	default:
		return false
	}
}
