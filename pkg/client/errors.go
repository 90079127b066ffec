package client

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches any *ValidationError
	ErrValidation = errors.New("client: invalid argument")

	// ErrNotFound matches any *NotFoundError
	ErrNotFound = errors.New("client: not found")
)

// ValidationError is a caller argument rejected before any request is sent.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("client: invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError is a lookup by id that returned no records.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client: %s %q not found", e.Resource, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsValidation checks if the error is a rejected argument.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if the error is an empty lookup by id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
