// Package apperror provides structured error handling following RFC 7807 Problem Details.
// Every recoverable failure in the custom-field core is an AppError so the
// HTTP layer can render it without knowing which module produced it.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal  = "INTERNAL_ERROR"
	CodeDatabase  = "DATABASE_ERROR"
	CodeTransport = "TRANSPORT_ERROR"

	// Request shape errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Value submission errors (422)
	CodeTypeMismatch        = "TYPE_MISMATCH"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeUniquenessConflict  = "UNIQUENESS_CONFLICT"

	// Reference and lifecycle errors
	CodeReference       = "REFERENCE_ERROR"
	CodeState           = "STATE_ERROR"
	CodeAttributeLocked = "ATTRIBUTE_LOCKED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field id, violated constraint, bounds)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a request validation error (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewTypeMismatch reports a raw value whose shape cannot be coerced to the field type.
func NewTypeMismatch(message string) *AppError {
	return &AppError{
		Code:       CodeTypeMismatch,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewConstraintViolation reports one or more failed constraints of a submission.
func NewConstraintViolation(message string) *AppError {
	return &AppError{
		Code:       CodeConstraintViolation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewUniquenessConflict reports an equal active value stored elsewhere for a unique field.
func NewUniquenessConflict(message string) *AppError {
	return &AppError{
		Code:       CodeUniquenessConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewReference reports an identifier that does not resolve, or resolves to
// a deleted field on a create path.
func NewReference(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeReference,
		Message:    fmt.Sprintf("%s reference does not resolve", entity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewState reports a mutation attempted in a lifecycle state that forbids it.
func NewState(message string) *AppError {
	return &AppError{
		Code:       CodeState,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewAttributeLocked reports a client trying to change a locked boolean attribute.
func NewAttributeLocked(attribute string) *AppError {
	return &AppError{
		Code:       CodeAttributeLocked,
		Message:    fmt.Sprintf("attribute %s is locked", attribute),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"attribute": attribute},
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps an unexpected database error (500).
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Database error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewTransport wraps a store failure that makes the whole request fail.
func NewTransport(err error) *AppError {
	return &AppError{
		Code:       CodeTransport,
		Message:    "Storage is unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsRecoverable reports whether err is a per-submission error that must not
// abort a batch. Anything else (raw driver errors, transport failures) is fatal.
func IsRecoverable(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case CodeTypeMismatch, CodeConstraintViolation, CodeUniquenessConflict,
		CodeReference, CodeState, CodeNotFound, CodeValidation, CodeDuplicate:
		return true
	}
	return false
}
