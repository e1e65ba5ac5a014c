package domain

import (
	"errors"
	"net/http"

	"github.com/simp-lee/pageshell/internal/route"
)

// Error codes carried by AppError.
const (
	CodeNotFound    = 1
	CodeValidation  = 2
	CodeInternal    = 3
	CodeRateLimited = 4
)

// AppError is an error with a stable code, a client-safe message and an
// optional wrapped cause.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors returned by the HTTP layer.
var (
	ErrNotFound    = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrInternal    = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrRateLimited = &AppError{Code: CodeRateLimited, Message: "too many requests"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromRouteError converts an error returned by route.Resolver into an AppError.
// Missing routes become NotFound, malformed paths become Validation errors and
// anything else is Internal.
func FromRouteError(err error) *AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, route.ErrNoRoute):
		return NewAppError(CodeNotFound, "no page registered for path", err)
	case route.IsPathError(err):
		return NewAppError(CodeValidation, "invalid path", err)
	default:
		return NewAppError(CodeInternal, "internal error", err)
	}
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeInternal
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// Errors that are not *AppError map to http.StatusInternalServerError.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeValidation:
			return http.StatusBadRequest
		case CodeInternal:
			return http.StatusInternalServerError
		case CodeRateLimited:
			return http.StatusTooManyRequests
		}
	}
	return http.StatusInternalServerError
}
