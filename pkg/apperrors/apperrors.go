// Package apperrors defines the application's error taxonomy and the JSON
// envelope returned to HTTP clients.
package apperrors

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

func NotFound(message string) *AppError {
	return &AppError{Code: "NotFoundError", Message: message, Status: http.StatusNotFound}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: "BadRequestError", Message: message, Status: http.StatusBadRequest}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: "UnauthorizedError", Message: message, Status: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: "ForbiddenError", Message: message, Status: http.StatusForbidden}
}

func Conflict(message string) *AppError {
	return &AppError{Code: "ConflictError", Message: message, Status: http.StatusConflict}
}

func Internal(message string) *AppError {
	return &AppError{Code: "InternalServerError", Message: message, Status: http.StatusInternalServerError}
}

// From maps any error onto the taxonomy; unknown errors become a generic 500
// so internal details never leak to clients.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("erro interno do servidor")
}

// ErrorResponse is the JSON envelope for error replies.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Path       string `json:"path"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *AppError) Response(path, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:      e.Code,
		Message:    e.Message,
		StatusCode: e.Status,
		Path:       path,
		RequestID:  requestID,
	}
}
