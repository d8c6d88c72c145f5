// Package apierror defines the structured errors rendered verbatim to API callers.
package apierror

import (
	"errors"
	"net/http"
)

// Error carries an HTTP status and a caller-facing message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

func Conflict(message string) *Error { return New(http.StatusConflict, message) }

// As unwraps err into an *Error when it is one.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
