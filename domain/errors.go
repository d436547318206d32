package domain

import (
	"errors"
	"fmt"
)

// StoreError indicates that the backing record store reported a failure or
// that the call itself failed. Message preserves the store's own message
// verbatim when one was supplied.
type StoreError struct {
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: store call failed", e.Op)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NotFoundError indicates a mutation targeted a record id that does not
// exist. Plain lookups return nil for a miss instead of this error.
type NotFoundError struct {
	Table string
	ID    int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Table, e.ID)
}

// ValidationError indicates a request was rejected client-side before any
// store call was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
