package domain

import "fmt"

// Error codes carried by domain errors and surfaced in API responses.
const (
	CodeNotFound       = "not_found"
	CodeValidation     = "validation_error"
	CodeConflict       = "conflict"
	CodeInvalidState   = "invalid_state"
	CodeForbidden      = "forbidden"
	CodeLocationDenied = "location_denied"
)

// NotFoundError indicates that a requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Code returns the API error code.
func (e *NotFoundError) Code() string { return CodeNotFound }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

// Code returns the API error code.
func (e *ValidationError) Code() string { return CodeValidation }

// ConflictError indicates the request conflicts with existing state.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError.
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{Message: msg}
}

func (e *ConflictError) Error() string { return e.Message }

// Code returns the API error code.
func (e *ConflictError) Code() string { return CodeConflict }

// InvalidStateError indicates an operation is not allowed in the current state.
type InvalidStateError struct {
	Message string
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(msg string) *InvalidStateError {
	return &InvalidStateError{Message: msg}
}

func (e *InvalidStateError) Error() string { return e.Message }

// Code returns the API error code.
func (e *InvalidStateError) Code() string { return CodeInvalidState }

// ForbiddenError indicates the caller may not perform the operation.
type ForbiddenError struct {
	Message string
	code    string
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(msg string) *ForbiddenError {
	return &ForbiddenError{Message: msg, code: CodeForbidden}
}

// NewLocationDeniedError creates a ForbiddenError raised when the device has
// denied location access.
func NewLocationDeniedError() *ForbiddenError {
	return &ForbiddenError{Message: "location access has been denied", code: CodeLocationDenied}
}

func (e *ForbiddenError) Error() string { return e.Message }

// Code returns the API error code.
func (e *ForbiddenError) Code() string {
	if e.code == "" {
		return CodeForbidden
	}
	return e.code
}
