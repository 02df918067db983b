package report

import "errors"

var (
	ErrAlreadyDispatched = errors.New("report already dispatched for this organization, kind and day")
	ErrNotWorkingDay     = errors.New("target day is not a working day for this organization")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
)
