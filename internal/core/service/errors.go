package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)
	ErrMemberNotFound = fmt.Errorf("member %w", ErrNotFound)
	ErrLoanNotFound   = fmt.Errorf("loan %w", ErrNotFound)

	ErrBookUnavailable     = fmt.Errorf("%w: book is not available", ErrConflict)
	ErrLoanAlreadyReturned = fmt.Errorf("%w: loan already returned", ErrConflict)
)

// ValidationError reports a request field that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s' %s", e.Field, e.Reason)
}

func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
