// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "github.com/CuasDev/fel/internal/validation"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries every field-level violation of a request.
type ValidationError struct {
	Detail string                  `json:"detail"`
	Errors []validation.FieldError `json:"errors"`
}

func NewValidation(fields []validation.FieldError) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Errors: fields}
}

// Internal is the body sent for any unexpected failure.
func Internal() *APIError {
	return New("Error interno del servidor")
}
