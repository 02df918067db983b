package attendance

import (
	"context"
)

// Repository defines data access for attendance records. CRUD only; all
// business rules live in the service layer.
type Repository interface {
	// Create persists a new record.
	Create(ctx context.Context, record Record) (Record, error)

	// Update overwrites an existing record, breaks included.
	Update(ctx context.Context, record Record) error

	// FindOpenShift returns the user's open (non-COMPLETED) record for the
	// calendar day, or ErrRecordNotFound.
	FindOpenShift(ctx context.Context, userID, day string) (Record, error)

	// FindShiftsByDay returns all records of an organization for the day.
	FindShiftsByDay(ctx context.Context, orgID, day string) ([]Record, error)

	// FindOpenShiftsByDay returns the organization's records for the day
	// that have no check-out yet. Used by the overtime scan.
	FindOpenShiftsByDay(ctx context.Context, orgID, day string) ([]Record, error)

	// BulkCreate persists a batch of records (thin batch-import caller).
	BulkCreate(ctx context.Context, records []Record) error
}
