package swaps

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

// Kind classifies engine failures. Kinds are sentinel errors so callers can
// test with errors.Is.
type Kind error

var (
	ErrValidation   Kind = errors.New("validation failed")
	ErrInvalidState Kind = errors.New("invalid or not in a valid state")
	ErrNotFound     Kind = errors.New("not found")
	ErrIntegrity    Kind = errors.New("data integrity fault")
)

type Error struct {
	Op     string
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
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

func newError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// lookupError turns a repository miss into ErrNotFound and passes store
// faults through untouched.
func lookupError(op string, err error) error {
	if repositories.IsNotFound(err) {
		return &Error{Op: op, Kind: ErrNotFound, Err: err}
	}
	return err
}

// HTTPStatus maps an engine error to the status code returned to callers.
// Anything without a kind is a store fault.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the stable machine-readable error code for err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrIntegrity):
		return "INTEGRITY_ERROR"
	default:
		return "STORE_ERROR"
	}
}
