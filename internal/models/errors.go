// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across services and handlers.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodePermission      = "PERMISSION_DENIED"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeBackend         = "BACKEND_UNAVAILABLE"
	CodeReauthRequired  = "REAUTH_REQUIRED"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewPermissionError marks an action the caller is not allowed to perform
// (banned sender, missing admin role). Not retryable by the caller.
func NewPermissionError(message string) *AppError {
	return &AppError{
		Code:    CodePermission,
		Message: message,
	}
}

// NewPayloadTooLargeError covers both the pre-flight size check and a
// backend-side oversized-document rejection.
func NewPayloadTooLargeError(message string) *AppError {
	return &AppError{
		Code:    CodePayloadTooLarge,
		Message: message,
	}
}

// NewBackendError wraps a transient store/network failure. Callers decide
// whether to retry; nothing retries internally.
func NewBackendError(err error) *AppError {
	return &AppError{
		Code:    CodeBackend,
		Message: "Backend temporarily unavailable",
		Err:     err,
	}
}

// NewReauthRequiredError signals that the operation needs a fresh credential
// (e.g. account deletion with a stale session).
func NewReauthRequiredError(message string) *AppError {
	return &AppError{
		Code:    CodeReauthRequired,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
