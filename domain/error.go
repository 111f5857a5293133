// Package domain defines the error taxonomy shared by all layers
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is the repository-level sentinel for a missing row
var ErrNotFound = errors.New("not found")

// Error codes surfaced to API clients
const (
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeProvisioningFailure = "PROVISIONING_FAILURE"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// AppError is a business error carrying an HTTP status and machine code
type AppError struct {
	Code    string
	Message string
	Status  int
	cause   error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// NewResourceNotFound reports a referenced entity that does not exist
func NewResourceNotFound(resource, key string) *AppError {
	return &AppError{
		Code:    CodeResourceNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
		Status:  http.StatusNotFound,
	}
}

// NewDuplicate reports a unique-key violation detected before mutation
func NewDuplicate(field, value string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: fmt.Sprintf("%s already exists: %s", field, value),
		Status:  http.StatusConflict,
	}
}

// NewValidation reports malformed or missing input
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewProvisioningFailure wraps a failed identity provider operation
func NewProvisioningFailure(operation string, cause error) *AppError {
	return &AppError{
		Code:    CodeProvisioningFailure,
		Message: fmt.Sprintf("identity provisioning failed during %s: %v", operation, cause),
		Status:  http.StatusBadGateway,
		cause:   cause,
	}
}

// NewConflict reports a concurrent-access conflict, e.g. a held scan lock
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}
