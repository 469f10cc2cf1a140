package service

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a lifecycle action is not allowed from the trip's status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidTripID is returned when trip ID is not positive.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidAction is returned when a status change names an unknown action.
	ErrInvalidAction = errors.New("invalid status action")

	// ErrTripNotCompleted is returned when settling a trip that has not been completed.
	ErrTripNotCompleted = errors.New("trip not completed")

	// ErrInvalidAmount is returned when an amount string cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// Is reports ErrValidation as a match so callers can use errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// fieldErrors collects failing field names in order, without duplicates.
type fieldErrors struct {
	fields []string
}

func (f *fieldErrors) add(field string) {
	for _, existing := range f.fields {
		if existing == field {
			return
		}
	}
	f.fields = append(f.fields, field)
}

func (f *fieldErrors) err() error {
	if len(f.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: f.fields}
}
