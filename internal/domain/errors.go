// Package domain contains the core business entities for Agora.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Identity Errors
	// ===========================================

	// ErrAuthenticationRequired indicates an operation needs a signed-in caller.
	ErrAuthenticationRequired = errors.New("Authentication required")

	// ErrInvalidCredentials indicates login failed. Unknown email and wrong
	// password both produce this error.
	ErrInvalidCredentials = errors.New("Invalid credentials.")

	// ErrInvalidToken indicates a bearer token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a bearer token is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ===========================================
	// Input Errors
	// ===========================================

	// ErrValidation indicates missing or malformed input fields.
	ErrValidation = errors.New("validation failed")

	// ===========================================
	// Storage Errors
	// ===========================================

	// ErrUserAlreadyExists indicates a user with the same username/email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrCreation indicates the store rejected a new record.
	ErrCreation = errors.New("creation failed")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTopicNotFound indicates the requested topic does not exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrReferenceNotFound indicates a referenced record (topic, post, user) does not exist.
	ErrReferenceNotFound = errors.New("referenced record does not exist")

	// ErrInternal indicates an unexpected infrastructure failure.
	ErrInternal = errors.New("internal server error")
)

// ValidationError carries per-field messages for rejected input.
// It unwraps to ErrValidation.
type ValidationError struct {
	// Fields maps an input field name to its message.
	Fields map[string]string

	// Message is the rendered summary.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrValidation.Error()
}

// Unwrap returns ErrValidation for errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Fields:  map[string]string{field: message},
		Message: fmt.Sprintf("%s: %s.", field, message),
	}
}

// CreationError wraps the storage failure that prevented a record from being created.
type CreationError struct {
	// Entity is the kind of record ("post", "topic", "comment").
	Entity string

	// Err is the underlying storage error.
	Err error
}

// Error implements the error interface.
func (e *CreationError) Error() string {
	return fmt.Sprintf("Error creating %s: %s", e.Entity, e.Err.Error())
}

// Unwrap exposes both ErrCreation and the storage error.
func (e *CreationError) Unwrap() []error {
	return []error{ErrCreation, e.Err}
}

// NewCreationError wraps err as a creation failure for entity.
func NewCreationError(entity string, err error) *CreationError {
	return &CreationError{Entity: entity, Err: err}
}
