package entities

import (
	"errors"
	"fmt"
)

// Business-rule errors raised by entity methods. Orchestration propagates
// them unchanged; the HTTP layer maps them to status codes.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingPrice      = errors.New("cannot finish service order without a price")
	ErrOrderFinished     = errors.New("cannot update price of a finished service order")
	ErrNumberAlreadySet  = errors.New("service order number already set")

	ErrUnsupportedAttachmentType = errors.New("unsupported attachment type")
	ErrInvalidAttachmentSize     = errors.New("invalid attachment size")

	ErrDuplicateDocument = errors.New("a customer with this document already exists")
	ErrDuplicatePhone    = errors.New("a customer with this phone already exists")
)

// ValidationError signals malformed or out-of-range input on a single field.
// It is caller-correctable, unlike the state-conflict sentinels above.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
