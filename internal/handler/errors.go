package handler

import (
	"errors"

	"github.com/prn-tf/agora/internal/domain"
)

// Error codes reported in ErrorExtensions.Code.
const (
	CodeAuthenticationRequired = "AuthenticationRequired"
	CodeInvalidCredentials     = "InvalidCredentials"
	CodeValidation             = "ValidationError"
	CodeDuplicateUser          = "DuplicateUser"
	CodeCreation               = "CreationError"
	CodeUnknownOperation       = "UnknownOperation"
	CodeRateLimited            = "RateLimited"
	CodeInternal               = "InternalError"
)

// ErrUnknownOperation indicates a document named an operation that does not exist.
var ErrUnknownOperation = errors.New("unknown operation")

const internalMessage = "Internal server error"

// classify maps an operation error to its code and caller-facing message.
func classify(err error) ErrorExtensions {
	var ext ErrorExtensions

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		ext.Code = CodeAuthenticationRequired
	case errors.Is(err, domain.ErrInvalidCredentials):
		ext.Code = CodeInvalidCredentials
	case errors.As(err, &validationErr):
		ext.Code = CodeValidation
		ext.Fields = validationErr.Fields
	case errors.Is(err, domain.ErrValidation):
		ext.Code = CodeValidation
	case errors.Is(err, domain.ErrUserAlreadyExists):
		ext.Code = CodeDuplicateUser
	// CreationError also unwraps to ErrInternal when the store failed outright.
	case errors.Is(err, domain.ErrCreation):
		ext.Code = CodeCreation
	case errors.Is(err, ErrUnknownOperation):
		ext.Code = CodeUnknownOperation
	default:
		ext.Code = CodeInternal
	}

	return ext
}

// newErrorEntry builds the error entry for the operation at key.
func newErrorEntry(key string, err error) ErrorEntry {
	ext := classify(err)

	message := err.Error()
	if ext.Code == CodeInternal {
		message = internalMessage
	}

	return ErrorEntry{
		Message:    message,
		Path:       []string{key},
		Extensions: ext,
	}
}

// documentError builds the single error entry of a rejected document.
func documentError(code, message string) ErrorEntry {
	return ErrorEntry{
		Message:    message,
		Extensions: ErrorExtensions{Code: code},
	}
}
