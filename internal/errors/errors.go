package errors

import "errors"

// Domain errors surfaced by the booking core. Services wrap these with
// fmt.Errorf("...: %w", err); handlers match them with errors.Is.
var (
	ErrInvalidWindow     = errors.New("end time must be after start time")
	ErrInvalidRate       = errors.New("rate must not be negative")
	ErrInvalidVehicle    = errors.New("vehicle license plate is required")
	ErrOverlapConflict   = errors.New("booking window conflicts with an existing booking")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNotFound          = errors.New("not found")
)
