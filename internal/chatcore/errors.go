// Package chatcore holds types shared across the messaging engine:
// error kinds and the ChatEvent union published on the event bus.
package chatcore

import "fmt"

// Kind classifies a failure so the HTTP layer can pick the right status
// code and body shape without re-deriving it from the underlying error.
type Kind int

const (
	// KindInternal is the zero value so an unwrapped error defaults to 500.
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

// Error wraps a failure with the Kind used to translate it at the HTTP
// boundary. Construct via the Invalid/NotFound/... helpers below.
type Error struct {
	Kind    Kind
	Message string
	// RetryAfterSecs, Limit, Remaining are only meaningful for KindRateLimited.
	RetryAfterSecs int
	Limit          int
	Remaining      int
	err            error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Invalid(format string, args ...interface{}) *Error {
	return newErr(KindInvalid, fmt.Sprintf(format, args...))
}

func Unauthorized(msg string) *Error {
	return newErr(KindUnauthorized, msg)
}

func Forbidden(msg string) *Error {
	return newErr(KindForbidden, msg)
}

func NotFound(msg string) *Error {
	return newErr(KindNotFound, msg)
}

func Conflict(msg string) *Error {
	return newErr(KindConflict, msg)
}

func RateLimited(retryAfterSecs, limit, remaining int) *Error {
	return &Error{
		Kind:           KindRateLimited,
		Message:        "rate limit exceeded",
		RetryAfterSecs: retryAfterSecs,
		Limit:          limit,
		Remaining:      remaining,
	}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", err: err}
}

// As extracts a *Error from err, or reports ok=false if err isn't one.
func As(err error) (*Error, bool) {
	ce, ok := err.(*Error)
	return ce, ok
}
