package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/services"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeValidation   = "VALIDATION_FAILED"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// RespondWithServiceError maps a service error to its HTTP status.
// Unclassified errors are recorded on the context and answered with a generic 500.
func RespondWithServiceError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, ErrCodeInternalError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, services.ErrAlreadyExists):
		status, code = http.StatusConflict, ErrCodeAlreadyExists
	case errors.Is(err, services.ErrValidation):
		status, code = http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, services.ErrAuthentication):
		status, code = http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, services.ErrAuthorization):
		status, code = http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, services.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		RespondWithError(c, status, NewAPIError(code, "Internal server error"))
		return
	}

	apiErr := NewAPIError(code, err.Error())
	if details := services.DetailsOf(err); len(details) > 0 {
		apiErr.Details = details
	}
	RespondWithError(c, status, apiErr)
}
