package webutil

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	msgBadRequest          = "Bad Request"
	msgNotFound            = "Resource not found"
	msgInternalServer      = "Internal Server Error"
	msgUnauthorized        = "Authentication required"
	msgForbidden           = "Permission denied"
	msgConflict            = "Conflict"
	msgUnprocessableEntity = "Unprocessable Entity"
	msgTooManyRequests     = "Too many requests"
)

// HTTPError is an error with an associated HTTP status code and a
// user-facing message. Fields, when set, is rendered in place of Message.
type HTTPError struct {
	cause   error
	Code    int
	Message string
	Fields  map[string]string
}

// Error returns the user-facing message.
func (he HTTPError) Error() string {
	return he.Message
}

func (he HTTPError) Unwrap() error {
	return he.cause
}

func defaultMessageIfEmpty(initialMsg, defaultVal string) string {
	if initialMsg == "" {
		return defaultVal
	}
	return initialMsg
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		cause:   errors.New(message),
		Code:    code,
		Message: message,
	}
}

// NewHTTPErrorWrap creates an HTTPError whose cause is logged but not shown.
func NewHTTPErrorWrap(code int, message string, cause error) *HTTPError {
	return &HTTPError{
		cause:   cause,
		Code:    code,
		Message: message,
	}
}

func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, defaultMessageIfEmpty(message, msgBadRequest))
}

func ErrBadRequestWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusBadRequest, defaultMessageIfEmpty(message, msgBadRequest), cause)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, defaultMessageIfEmpty(message, msgNotFound))
}

func ErrInternalServerWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusInternalServerError, msgInternalServer, fmt.Errorf("%s: %w", message, cause))
}

func ErrUnauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, defaultMessageIfEmpty(message, msgUnauthorized))
}

func ErrForbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, defaultMessageIfEmpty(message, msgForbidden))
}

func ErrTooManyRequests() *HTTPError {
	return NewHTTPError(http.StatusTooManyRequests, msgTooManyRequests)
}

// ErrUnprocessableEntity reports field-level problems with the request.
func ErrUnprocessableEntity(fields map[string]string, cause error) *HTTPError {
	return &HTTPError{
		cause:   cause,
		Code:    http.StatusUnprocessableEntity,
		Message: msgUnprocessableEntity,
		Fields:  fields,
	}
}
