package schedule

import "errors"

// ErrCapacity is returned by Add once every slot is scheduled.
var ErrCapacity = errors.New("schedule: all slots scheduled")

// ValidationError rejects a schedule entry the user tried to add. It is
// reported back to the UI and never fatal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "schedule: " + e.Reason }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
