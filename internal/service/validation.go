package service

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/prn-tf/agora/internal/domain"
)

// validationError converts ozzo-validation output into a domain.ValidationError.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return &domain.ValidationError{Message: err.Error()}
	}

	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return &domain.ValidationError{Fields: fields, Message: errs.Error()}
}
