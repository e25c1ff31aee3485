// Package apperror is the error taxonomy shared by services, handlers and the client.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindState            Kind = "state"
	KindConflict         Kind = "conflict"
	KindUnauthenticated  Kind = "unauthenticated"
	KindUnauthorized     Kind = "unauthorized"
	KindNotFound         Kind = "not_found"
	KindTransientNetwork Kind = "transient_network"
	KindInternal         Kind = "internal"
)

// Error carries a Kind and a message that is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so sentinel
// errors keep working after Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a cause to a sentinel without changing its identity.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

func Validation(msg string) *Error       { return New(KindValidation, msg) }
func State(msg string) *Error            { return New(KindState, msg) }
func Conflict(msg string) *Error         { return New(KindConflict, msg) }
func Unauthenticated(msg string) *Error  { return New(KindUnauthenticated, msg) }
func Unauthorized(msg string) *Error     { return New(KindUnauthorized, msg) }
func NotFound(msg string) *Error         { return New(KindNotFound, msg) }
func TransientNetwork(msg string) *Error { return New(KindTransientNetwork, msg) }

// KindOf reports the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindState, KindConflict:
		return http.StatusConflict
	case KindTransientNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus is the inverse of HTTPStatus for responses that carry no code.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindState
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout, status == http.StatusTooManyRequests:
		return KindTransientNetwork
	default:
		return KindInternal
	}
}
