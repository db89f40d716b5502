// Package apperr defines the error taxonomy shared by every handler and the
// JSON shaping that turns those errors into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of the transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindForbidden
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Status returns the default HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Reason is short and stable; Detail is optional
// human-readable context. HTTPStatus, when non-zero, overrides the kind's status
// so an upstream status can be passed through verbatim.
type Error struct {
	Kind       Kind
	Reason     string
	Detail     string
	HTTPStatus int
	Err        error

	base *Error
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status reports the HTTP status the error should be rendered with.
func (e *Error) Status() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return e.Kind.Status()
}

// WithDetail returns a copy carrying the given detail message. The copy still
// matches the original through errors.Is.
func (e *Error) WithDetail(format string, args ...any) *Error {
	cp := *e
	cp.Detail = fmt.Sprintf(format, args...)
	cp.base = e.root()
	return &cp
}

// Wrap returns a copy that records cause while still matching the original.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	cp.base = e.root()
	return &cp
}

// Is lets a derived copy match the sentinel it was built from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.base != nil && e.base == t)
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}
	return e
}

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Validation reports a missing or malformed required field (400).
func Validation(reason string) *Error { return newError(KindValidation, reason) }

// Unauthorized reports a missing or unparseable identity (401).
func Unauthorized(reason string) *Error { return newError(KindUnauthorized, reason) }

// NotFound reports a missing record or an expired share token (404).
func NotFound(reason string) *Error { return newError(KindNotFound, reason) }

// Forbidden reports an ownership mismatch that is distinguishable from absence (403).
func Forbidden(reason string) *Error { return newError(KindForbidden, reason) }

// Internal reports an unexpected or defensive failure (500).
func Internal(reason string, err error) *Error {
	return &Error{Kind: KindInternal, Reason: reason, Err: err}
}

// Upstream reports a failed dependent call (500 unless status is given).
func Upstream(reason string, status int, err error) *Error {
	return &Error{Kind: KindUpstream, Reason: reason, HTTPStatus: status, Err: err}
}

// As extracts the classified error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
