// Package apperr classifies failures into the kinds the HTTP boundary knows
// how to report.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Unauthorized
	Forbidden
	NotFound
	InvalidInput
	Conflict
	ExternalFailure
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case Conflict:
		return "conflict"
	case ExternalFailure:
		return "external_failure"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code returned to clients.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case ExternalFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing text for err. Internal errors never
// expose their cause.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != Internal {
		if appErr.Message != "" {
			return appErr.Message
		}
		return appErr.Kind.String()
	}
	return "internal server error"
}
