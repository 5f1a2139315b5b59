// Package errors provides standardized domain errors with codes for the coverdash API.
//
// Services return typed errors; handlers either check them with errors.Is
// or inspect the Code for switch statements. Every code maps to an HTTP
// status so the API layer never invents its own translation.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeValidation     Code = "VALIDATION"
	CodeConflict       Code = "CONFLICT"
	CodeInternal       Code = "INTERNAL"
	CodeAuthFailure    Code = "AUTH_FAILURE"
	CodeCatalogRequest Code = "CATALOG_REQUEST"
	CodeMissingColumn  Code = "MISSING_COLUMN"
	CodeImageFetch     Code = "IMAGE_FETCH"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeMissingColumn:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeAuthFailure:
		return http.StatusUnauthorized
	case CodeCatalogRequest, CodeImageFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict       = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal       = &Error{Code: CodeInternal, Message: "internal error"}
	ErrAuthFailure    = &Error{Code: CodeAuthFailure, Message: "catalog authentication failed"}
	ErrCatalogRequest = &Error{Code: CodeCatalogRequest, Message: "catalog request failed"}
	ErrMissingColumn  = &Error{Code: CodeMissingColumn, Message: "required column missing"}
	ErrImageFetch     = &Error{Code: CodeImageFetch, Message: "image fetch failed"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// AuthFailure creates a catalog authentication error.
func AuthFailure(msg string) *Error {
	return &Error{Code: CodeAuthFailure, Message: msg}
}

// AuthFailuref creates a catalog authentication error with formatted message.
func AuthFailuref(format string, args ...any) *Error {
	return &Error{Code: CodeAuthFailure, Message: fmt.Sprintf(format, args...)}
}

// CatalogRequest creates a catalog request error.
func CatalogRequest(msg string) *Error {
	return &Error{Code: CodeCatalogRequest, Message: msg}
}

// CatalogRequestf creates a catalog request error with formatted message.
func CatalogRequestf(format string, args ...any) *Error {
	return &Error{Code: CodeCatalogRequest, Message: fmt.Sprintf(format, args...)}
}

// MissingColumn creates an error for a tabular upload lacking a required column.
func MissingColumn(column string) *Error {
	return &Error{
		Code:    CodeMissingColumn,
		Message: fmt.Sprintf("upload must include a %q column", column),
		Details: map[string]string{"column": column},
	}
}

// ImageFetch creates an image fetch error.
func ImageFetch(msg string) *Error {
	return &Error{Code: CodeImageFetch, Message: msg}
}

// ImageFetchf creates an image fetch error with formatted message.
func ImageFetchf(format string, args ...any) *Error {
	return &Error{Code: CodeImageFetch, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
