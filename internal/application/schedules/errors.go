package schedules

import "errors"

var (
	ErrScheduleNotFound = errors.New("Vesting schedule not found")
	ErrScheduleInUse    = errors.New("Cannot delete vesting schedule that is in use")
	ErrInvalidDuration  = errors.New("Total duration must be a positive number of months")
)
