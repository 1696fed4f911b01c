package plans

import (
	"errors"
	"fmt"
)

var (
	ErrPlanNotFound       = errors.New("Option plan not found")
	ErrShareClassNotFound = errors.New("Share class not found")
	ErrInvalidResize      = errors.New("New total shares cannot be less than already issued shares")
	ErrPlanInUse          = errors.New("Cannot delete option plan that has options granted")
)

// InsufficientSharesError carries the headroom context so callers can tell
// the user how short the plan is.
type InsufficientSharesError struct {
	Available int64
	Requested int64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("Not enough shares available in the option plan (available %d, requested %d)", e.Available, e.Requested)
}
