package options

import (
	"errors"
	"fmt"
)

var (
	ErrOptionNotFound      = errors.New("Stock option not found")
	ErrShareholderNotFound = errors.New("Shareholder not found")
	ErrScheduleNotFound    = errors.New("Vesting schedule not found")
	ErrOptionNotActive     = errors.New("Stock option is not active")
	ErrInvalidQuantity     = errors.New("Quantity must be a positive number")
)

// InsufficientVestedSharesError reports how many shares had vested as of the
// requested exercise date.
type InsufficientVestedSharesError struct {
	Vested    int64
	Requested int64
}

func (e *InsufficientVestedSharesError) Error() string {
	return fmt.Sprintf("Not enough vested shares to exercise (vested %d, requested %d)", e.Vested, e.Requested)
}

// ExerciseExceedsGrantError reports the cumulative total that would breach
// the grant quantity.
type ExerciseExceedsGrantError struct {
	AlreadyExercised int64
	Requested        int64
	GrantQuantity    int64
}

func (e *ExerciseExceedsGrantError) Error() string {
	return fmt.Sprintf("Exercise amount exceeds available option shares (exercised %d, requested %d, grant %d)", e.AlreadyExercised, e.Requested, e.GrantQuantity)
}
