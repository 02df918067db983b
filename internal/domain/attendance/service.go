package attendance

import (
	"context"
)

// Service defines the per-user daily attendance state machine:
// NONE -> PRESENT -> {ON_BREAK <-> PRESENT} -> COMPLETED.
type Service interface {
	// CheckIn opens a new shift. Fails with ErrDuplicateCheckIn if an open
	// record already exists for the user on that calendar day.
	CheckIn(ctx context.Context, req CheckInRequest) (Record, error)

	// CheckOut closes the open shift, computing final work and break
	// durations. An open break is force-closed at the check-out timestamp.
	CheckOut(ctx context.Context, req CheckOutRequest) (Record, error)

	// ManageBreak starts or ends a break on the open shift.
	ManageBreak(ctx context.Context, req BreakRequest) (Record, error)

	// BulkCheckIn is the thin batch caller used by imports: it applies the
	// same guards per row and reports per-row failures without aborting
	// the batch.
	BulkCheckIn(ctx context.Context, reqs []CheckInRequest) (BulkResult, error)
}

// BulkResult summarizes a batch state-machine run.
type BulkResult struct {
	Created int
	Skipped int
	Errors  []error
}
