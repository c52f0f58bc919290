package common

import (
	"errors"
	"net/http"

	"github.com/mhsanaei/userhub/logger"
)

// Error taxonomy. Services wrap these; the HTTP layer maps them to a status
// with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation error")
	ErrRateLimited  = errors.New("rate limited")
	ErrInternal     = errors.New("internal error")
)

// HTTPError carries the message shown to the client next to the taxonomy
// error used to pick the status.
type HTTPError struct {
	Kind    error
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewHTTPError returns an error that matches kind with errors.Is and reports
// message to the client.
func NewHTTPError(kind error, message string) *HTTPError {
	return &HTTPError{Kind: kind, Message: message}
}

// WrapHTTPError is NewHTTPError with an underlying cause kept for logs.
func WrapHTTPError(kind error, message string, err error) *HTTPError {
	return &HTTPError{Kind: kind, Message: message, Err: err}
}

// StatusCode maps err to an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show for err, or "" when err
// carries none.
func ClientMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}

// Combine returns the first non-nil error.
func Combine(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
