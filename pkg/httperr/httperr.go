// Package httperr carries an HTTP status and the layer an error came from
// through the call stack, and renders it as JSON at the edge.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindModel      Kind = "Model"
	KindController Kind = "Controller"
	KindService    Kind = "Service"
	KindServer     Kind = "Server"
	KindMiddleware Kind = "Middleware"
	KindDatabase   Kind = "Database"
)

const internalMessage = "Internal Server Error"

type Error struct {
	Status  int
	Message string
	Kind    Kind
	Err     error
}

func New(status int, message string, kind Kind) *Error {
	return &Error{Status: status, Message: message, Kind: kind}
}

func Newf(status int, kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
		Err:     cause,
	}
}

// Wrap keeps the status and kind of an *Error found in err's chain.
// Any other error becomes a 500 of the given kind.
func Wrap(err error, kind Kind) *Error {
	if err == nil {
		return nil
	}
	var he *Error
	if errors.As(err, &he) {
		if he.Kind == "" {
			he.Kind = kind
		}
		if he.Status == 0 {
			he.Status = http.StatusInternalServerError
		}
		return he
	}
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: internalMessage,
		Kind:    kind,
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
