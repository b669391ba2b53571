// Package apperror defines the error taxonomy shared by the workflow engine
// and its adapters.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeIllegalState       Code = "ILLEGAL_STATE"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Sentinels usable with errors.Is. Any *Error with the same code matches.
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrIllegalState       = &Error{Code: CodeIllegalState, Message: "illegal state"}
	ErrPreconditionFailed = &Error{Code: CodePreconditionFailed, Message: "precondition failed"}
)

// Error is a structured application error.
type Error struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detail key-value pair to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return Newf(CodeValidation, format, args...)
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...interface{}) *Error {
	return Newf(CodeForbidden, format, args...)
}

// NotFound creates a not found error for the named resource.
func NotFound(resource string, id interface{}) *Error {
	return Newf(CodeNotFound, "%s %v not found", resource, id)
}

// IllegalState creates an illegal state error.
func IllegalState(format string, args ...interface{}) *Error {
	return Newf(CodeIllegalState, format, args...)
}

// PreconditionFailed creates a precondition failed error.
func PreconditionFailed(format string, args ...interface{}) *Error {
	return Newf(CodePreconditionFailed, format, args...)
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeIllegalState:
		return http.StatusConflict
	case CodePreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
