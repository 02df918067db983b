package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// BreakAction selects the break transition to perform.
type BreakAction string

const (
	BreakStart BreakAction = "START"
	BreakEnd   BreakAction = "END"
)

type CheckInRequest struct {
	UserID         string
	OrganizationID string
	BranchID       *string
	At             time.Time
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}
	if r.At.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "at",
			Message: "at is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	UserID string
	At     time.Time
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if r.At.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "at",
			Message: "at is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BreakRequest struct {
	UserID string
	Action BreakAction
	At     time.Time
}

func (r *BreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if !validator.IsInSlice(string(r.Action), []string{string(BreakStart), string(BreakEnd)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be START or END",
		})
	}
	if r.At.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "at",
			Message: "at is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
