package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details any, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func NotFound(message string, details any) *APIError {
	return New("NOT_FOUND", message, details, http.StatusNotFound)
}

func Unauthorized(message string) *APIError {
	return New("UNAUTHORIZED", message, nil, http.StatusUnauthorized)
}

func Forbidden(message string, details any) *APIError {
	return New("FORBIDDEN", message, details, http.StatusForbidden)
}

func Conflict(message string, details any) *APIError {
	return New("CONFLICT", message, details, http.StatusConflict)
}

func Validation(message string, details any) *APIError {
	return New("VALIDATION_ERROR", message, details, http.StatusBadRequest)
}

func BadRequest(message string, details any) *APIError {
	return New("BAD_REQUEST", message, details, http.StatusBadRequest)
}

// Unprocessable wraps an unexpected failure of a multi-step flow. Only the
// proximate message is kept.
func Unprocessable(message string, cause error) *APIError {
	var details any
	if cause != nil {
		details = cause.Error()
	}
	return New("UNPROCESSABLE_ENTITY", message, details, http.StatusUnprocessableEntity)
}

func Internal() *APIError {
	return New("INTERNAL_ERROR", "Unexpected server error", nil, http.StatusInternalServerError)
}
