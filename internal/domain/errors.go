package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrForbidden          = errors.New("admin privileges required")
	ErrNotFound           = errors.New("not found")
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicate          = errors.New("already exists")
	ErrEmailTaken         = fmt.Errorf("email %w", ErrDuplicate)
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
	err    error
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match both ErrValidation and the more specific cause.
func (e *ValidationError) Unwrap() []error {
	if e.err != nil {
		return []error{ErrValidation, e.err}
	}
	return []error{ErrValidation}
}
