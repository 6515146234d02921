// Package domainerr defines the error taxonomy shared by all domain services.
// Handlers translate kinds to HTTP status codes; services return wrapped
// *Error values and never touch net/http.
package domainerr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidState      Kind = "invalid_state"
	KindDoctorUnavailable Kind = "doctor_unavailable"
)

// Error is a typed domain error. Entity and ID are set for not-found errors,
// Msg carries the human-readable detail for everything else.
type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNotFound && e.Entity != "":
		return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that the entity with the given ID does not exist.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// InvalidInput reports a request that can never succeed as given.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

// InvalidInputf is InvalidInput with formatting.
func InvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// InvalidState reports an operation that is not allowed in the entity's
// current lifecycle state.
func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Msg: msg}
}

// InvalidStatef is InvalidState with formatting.
func InvalidStatef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// DoctorUnavailable reports a booking conflict on the doctor's calendar.
func DoctorUnavailable(msg string) *Error {
	return &Error{Kind: KindDoctorUnavailable, Msg: msg}
}

// KindOf extracts the Kind from err, unwrapping as needed. The second return
// is false when err carries no domain kind.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsNotFound reports whether err is (or wraps) a not-found domain error.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

// HTTPStatus maps a domain error to the HTTP status handlers should return.
// Errors without a kind are treated as internal.
func HTTPStatus(err error) int {
	k, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindInvalidState, KindDoctorUnavailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
