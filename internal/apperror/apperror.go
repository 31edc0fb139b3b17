package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Match them with errors.Is through any amount of wrapping.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrValidationFailed    = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConflict            = errors.New("conflict")
)

const genericMessage = "Something went wrong, please try again"

// Error carries a kind plus the reason reported by whoever produced it.
type Error struct {
	Kind    error
	Op      string
	Reason  string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg = e.Reason
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an error of the given kind.
func New(kind error, op, reason string) *Error {
	return &Error{Kind: kind, Op: op, Reason: reason}
}

// Wrap attaches a kind to a cause.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op, format string, args ...any) *Error {
	return New(ErrNotFound, op, fmt.Sprintf(format, args...))
}

func Forbidden(op, format string, args ...any) *Error {
	return New(ErrForbidden, op, fmt.Sprintf(format, args...))
}

func Conflict(op, format string, args ...any) *Error {
	return New(ErrConflict, op, fmt.Sprintf(format, args...))
}

func Invalid(op, format string, args ...any) *Error {
	return New(ErrValidationFailed, op, fmt.Sprintf(format, args...))
}

// Upstream marks a collaborator failure. A reason reported by the collaborator is kept verbatim.
func Upstream(op, reason string, err error) *Error {
	return &Error{Kind: ErrUpstreamUnavailable, Op: op, Reason: reason, Err: err}
}

// Message returns the user-facing text for err: the most specific reported reason,
// or a generic fallback when none was reported.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Reason != "" {
		return e.Reason
	}
	return genericMessage
}

// FieldErrors returns per-field validation details, if any.
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// HTTPStatus maps an error kind onto a response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
