package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidInput is the root of every input validation failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyInput       = fmt.Errorf("%w: empty input", ErrInvalidInput)
	ErrInsufficientData = fmt.Errorf("%w: insufficient data for analysis", ErrInvalidInput)
	ErrLengthMismatch   = fmt.Errorf("%w: length mismatch", ErrInvalidInput)
	ErrRaggedMatrix     = fmt.Errorf("%w: inconsistent row lengths", ErrInvalidInput)
	ErrNonFinite        = fmt.Errorf("%w: non-finite value", ErrInvalidInput)
	ErrNegativeCount    = fmt.Errorf("%w: negative count", ErrInvalidInput)
	ErrZeroTotal        = fmt.Errorf("%w: table total must be positive", ErrInvalidInput)
	ErrUnknownKind      = fmt.Errorf("%w: unknown analysis kind", ErrInvalidInput)
	ErrNotNumeric       = fmt.Errorf("%w: non-numeric value", ErrInvalidInput)
)

// NewInvalidInputError wraps ErrInvalidInput with the offending field.
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewFieldError attaches field context to one of the specialised sentinels.
func NewFieldError(sentinel error, field string, format string, args ...interface{}) error {
	return fmt.Errorf("%w (%s: %s)", sentinel, field, fmt.Sprintf(format, args...))
}

// IsInvalidInput reports whether err stems from input validation.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
