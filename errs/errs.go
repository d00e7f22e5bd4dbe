// Package errs defines the error kinds the API reports to clients and the
// mapping from store and driver errors onto them.
package errs

import (
	"net/http"
)

// Kind is the closed set of client-facing failure categories.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// FieldError is a single failed rule on a request field.
//
//	{ "field": "email", "message": "must be a valid email address" }
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error with a client-facing kind and message. Err keeps the
// underlying cause for logging; it is never sent to clients.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return e.Kind.Status()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func NewValidation(message string, fields []FieldError) *Error {
	e := &Error{Kind: KindValidation, Message: message}
	if len(fields) > 0 {
		e.Details = fields
	}
	return e
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewInternal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal Server Error", Err: err}
}
