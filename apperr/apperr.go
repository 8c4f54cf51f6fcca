package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("invalid input")
	ErrGateway    = errors.New("payment gateway failure")
)

type wrapped struct {
	msg  string
	kind error
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.kind }

// Wrap attaches a human-readable message to one of the sentinel kinds,
// keeping errors.Is(err, kind) intact.
func Wrap(kind error, msg string) error {
	return &wrapped{msg: msg, kind: kind}
}

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrForbidden):
		return "forbidden"

	case errors.Is(err, ErrConflict):
		return "conflict"

	case errors.Is(err, ErrValidation):
		return "validation"

	case errors.Is(err, ErrGateway):
		return "gateway"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, ErrConflict):
		return http.StatusConflict

	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
