package core

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("hx: not found")
var ErrTemplateNotFound = errors.New("hx: template not found")
var ErrConversion = errors.New("hx: cannot build render context")

// StatusError lets a handler pick the HTTP status its error is reported with.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Code)
	}
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Errorf builds a StatusError from a format string.
func Errorf(code int, format string, args ...any) error {
	return &StatusError{Code: code, Err: fmt.Errorf(format, args...)}
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode maps an error onto the HTTP status used to report it.
func StatusCode(err error) int {
	var statusErr *StatusError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &statusErr) && statusErr.Code != 0:
		return statusErr.Code
	case IsNotFoundError(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
