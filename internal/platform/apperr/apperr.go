// Package apperr defines the structured error carried from services to the
// HTTP layer: a stable machine code, a human-readable message and an HTTP
// status. Handlers never expose anything else to callers.
package apperr

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	status  int
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e == nil || e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func BadRequest(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusBadRequest}
}

func Unauthorized(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusUnauthorized}
}

func Forbidden(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusForbidden}
}

func NotFound(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusNotFound}
}

func Conflict(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusConflict}
}

func TooManyRequests(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusTooManyRequests}
}

func Internal(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: http.StatusInternalServerError}
}

// FromError returns err as an *AppError, wrapping unknown errors as a
// generic internal error so raw failures never leak to clients.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
}
