package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeModuleLocked = "MODULE_LOCKED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeDatabase     = "DATABASE_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Error is a failure-as-value carried across the service boundary.
// Services return (*T, *Error); handlers translate Code to an HTTP status.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Unauthorized(message string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: ErrCodeForbidden, Message: message}
}

func ModuleLocked(message string) *Error {
	return &Error{Code: ErrCodeModuleLocked, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: message}
}

func Validation(message string) *Error {
	return &Error{Code: ErrCodeValidation, Message: message}
}

func Database(message string, err error) *Error {
	return &Error{Code: ErrCodeDatabase, Message: message, Err: err}
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeModuleLocked:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteAppError writes a typed service failure using its mapped status.
func WriteAppError(w http.ResponseWriter, err *Error) {
	WriteError(w, StatusFor(err.Code), err.Code, err.Message, nil)
}
