// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a referenced plan, task or user that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals an actor lacking rights for the target entity.
	ErrForbidden = errors.New("not authorized")

	// ErrConflict signals an optimistic-concurrency write that lost its race
	// and exhausted its retries.
	ErrConflict = errors.New("concurrent modification conflict")
)

// ValidationError reports malformed or missing input. No partial state is
// created once one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NoBusinessDaysError means a plan's date range contains zero weekdays, so
// there is nothing to decompose the goal into.
type NoBusinessDaysError struct{}

func (e *NoBusinessDaysError) Error() string {
	return "no business days between start and end date"
}

// IsNoBusinessDays reports whether err is a NoBusinessDaysError.
func IsNoBusinessDays(err error) bool {
	var nbd *NoBusinessDaysError
	return errors.As(err, &nbd)
}
