package attendance

import "errors"

// Attendance domain errors. These reflect real precondition violations and
// are never retried automatically; the caller decides how to surface them.
var (
	ErrDuplicateCheckIn = errors.New("an open shift already exists for today")
	ErrNoActiveShift    = errors.New("no active shift to check out from")
	ErrNotCheckedIn     = errors.New("cannot start a break without an active shift")
	ErrNoOpenBreak      = errors.New("no open break to end")
	ErrCheckOutTooEarly = errors.New("check-out must be after check-in")
	ErrRecordNotFound   = errors.New("attendance record not found")
)
