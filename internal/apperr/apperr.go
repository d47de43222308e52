// Package apperr defines the closed set of error kinds surfaced by command and query handlers
// and the catalog of stable client-facing codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindBusinessRule
	KindFetch
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "concurrency_conflict"
	case KindBusinessRule:
		return "business_rule"
	case KindFetch:
		return "fetch"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by handlers.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so catalog sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds an error from a catalog code.
func New(code Code) *Error {
	entry := Lookup(code)
	return &Error{Kind: entry.Kind, Code: code, Message: entry.Message}
}

// Wrap builds an error from a catalog code, keeping cause for logs and errors.Is.
func Wrap(code Code, cause error) *Error {
	e := New(code)
	e.Err = cause
	return e
}

// Validation builds a validation error with a caller-specific message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg}
}

// NotFound builds a not-found error naming the missing resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

// KindOf reports the kind of err, KindUnknown for anything not produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As extracts the *Error from err, converting unknown failures to CodeUnknown.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(CodeUnknown, err)
}

// HTTPStatus maps a kind to the status code returned to clients.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBusinessRule:
		return http.StatusUnprocessableEntity
	case KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
