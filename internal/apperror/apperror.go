// Package apperror defines the error kinds surfaced at the request boundary
// and the HTTP status each one maps to.
package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation Code = "validation_error"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeHTTP       Code = "http_error"
)

// Error is a classified failure. Details carries field-level information for
// validation errors and is nil otherwise.
type Error struct {
	Code    Code
	Message string
	Details any
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// FieldErrors maps a request field name to what is wrong with it.
type FieldErrors map[string]string

func Validation(message string, fields FieldErrors) *Error {
	var details any
	if len(fields) > 0 {
		details = fields
	}
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// As extracts the classified error from err. Unclassified errors come back
// as a generic http_error so callers never leak driver messages.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Code: CodeHTTP, Message: "internal server error"}
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch As(err).Code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
