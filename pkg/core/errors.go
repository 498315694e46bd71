package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrValidation is returned when a required field is missing.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an update or delete target does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrStorageUnavailable is returned when the backing store cannot be read or written.
	// It is never used for a store that is simply empty.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFound builds an ErrNotFound wrapped with the addressed entry.
func NotFound(section Section, id EntryID) error {
	return fmt.Errorf("%w: %q in section %q", ErrNotFound, id, section)
}

// Unavailable wraps a storage failure so that it matches ErrStorageUnavailable
// while keeping the underlying cause inspectable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
