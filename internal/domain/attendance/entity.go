package attendance

import (
	"time"
)

// Status is the lifecycle state of a record for one calendar day.
// NONE and COMPLETED are terminal for that day; a new day restarts at NONE
// (represented by the absence of an open record).
type Status string

const (
	StatusPresent   Status = "PRESENT"
	StatusOnBreak   Status = "ON_BREAK"
	StatusCompleted Status = "COMPLETED"
)

// BreakInterval is one pause within a shift, owned exclusively by its
// parent record. EndAt is nil while the break is open; at most one break
// per record may be open.
type BreakInterval struct {
	ID      string
	StartAt time.Time
	EndAt   *time.Time
}

// Record is one shift instance for one user on one calendar day.
type Record struct {
	ID             string
	UserID         string
	OrganizationID string
	BranchID       *string
	Day            string // "2006-01-02" in the organization's local zone
	CheckInAt      time.Time
	CheckOutAt     *time.Time
	Breaks         []BreakInterval
	WorkMinutes    *int // set at check-out
	BreakMinutes   *int // set at check-out, includes a force-closed break
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OpenBreak returns the record's open break interval, or nil.
func (r *Record) OpenBreak() *BreakInterval {
	for i := range r.Breaks {
		if r.Breaks[i].EndAt == nil {
			return &r.Breaks[i]
		}
	}
	return nil
}

// TotalBreakMinutes sums all closed break intervals.
func (r *Record) TotalBreakMinutes() int {
	total := 0
	for _, b := range r.Breaks {
		if b.EndAt != nil {
			total += int(b.EndAt.Sub(b.StartAt).Minutes())
		}
	}
	return total
}

// DayOf formats a timestamp as the engine's calendar-day key.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}
