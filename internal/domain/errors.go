package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that match nothing
var ErrNotFound = errors.New("not found")

// ValidationError is a caller-correctable failure carrying a user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError formats a ValidationError
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
