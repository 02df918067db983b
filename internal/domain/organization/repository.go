package organization

import (
	"context"
	"time"
)

// Repository defines data access for organizations.
type Repository interface {
	// ListActive returns all organizations eligible for scheduled scans.
	ListActive(ctx context.Context) ([]Organization, error)
}

// WorkingHoursProvider resolves working-day configuration and lateness
// policy. Backed externally; the engine treats it as a narrow collaborator.
type WorkingHoursProvider interface {
	// GetWorkingDayInfo resolves the working-day entry for date.
	GetWorkingDayInfo(ctx context.Context, orgID string, date time.Time) (WorkingDayInfo, error)

	// IsUserLate applies the organization's lateness policy to a check-in
	// timestamp.
	IsUserLate(ctx context.Context, orgID string, checkInAt time.Time) (Lateness, error)
}
