package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func checkInReq(userID string, at time.Time) domain.CheckInRequest {
	return domain.CheckInRequest{UserID: userID, OrganizationID: "org-1", At: at}
}

func TestCheckIn_CreatesPresentRecord(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	rec, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))

	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.StatusPresent, rec.Status)
	assert.Equal(t, "2026-03-02", rec.Day)
	assert.Nil(t, rec.CheckOutAt)
}

func TestCheckIn_DuplicateSameDay(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, checkInReq("user-1", baseTime.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrDuplicateCheckIn)
}

func TestCheckIn_NewDayAfterCompletion(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, domain.CheckOutRequest{UserID: "user-1", At: baseTime.Add(8 * time.Hour)})
	require.NoError(t, err)

	// A completed shift is terminal for its day; the next day restarts.
	_, err = svc.CheckIn(ctx, checkInReq("user-1", baseTime.AddDate(0, 0, 1)))
	assert.NoError(t, err)
}

func TestCheckOut_NoActiveShift(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)

	_, err := svc.CheckOut(context.Background(), domain.CheckOutRequest{UserID: "user-1", At: baseTime})
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)
}

func TestCheckOut_MustBeAfterCheckIn(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, domain.CheckOutRequest{UserID: "user-1", At: baseTime})
	assert.ErrorIs(t, err, domain.ErrCheckOutTooEarly)
}

func TestCheckOut_ComputesDurations(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)

	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime.Add(3 * time.Hour)})
	require.NoError(t, err)
	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakEnd, At: baseTime.Add(3*time.Hour + 30*time.Minute)})
	require.NoError(t, err)

	rec, err := svc.CheckOut(ctx, domain.CheckOutRequest{UserID: "user-1", At: baseTime.Add(8 * time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, rec.Status)
	require.NotNil(t, rec.WorkMinutes)
	require.NotNil(t, rec.BreakMinutes)
	assert.Equal(t, 480, *rec.WorkMinutes)
	assert.Equal(t, 30, *rec.BreakMinutes)
}

func TestCheckOut_ForceClosesOpenBreak(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)
	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime.Add(7 * time.Hour)})
	require.NoError(t, err)

	checkOutAt := baseTime.Add(8 * time.Hour)
	rec, err := svc.CheckOut(ctx, domain.CheckOutRequest{UserID: "user-1", At: checkOutAt})
	require.NoError(t, err)

	// The unterminated break is closed at the check-out timestamp and
	// still counted.
	require.Len(t, rec.Breaks, 1)
	require.NotNil(t, rec.Breaks[0].EndAt)
	assert.Equal(t, checkOutAt, *rec.Breaks[0].EndAt)
	require.NotNil(t, rec.BreakMinutes)
	assert.Equal(t, 60, *rec.BreakMinutes)
	assert.Nil(t, rec.OpenBreak())
}

func TestManageBreak_StartRequiresPresent(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// No shift at all.
	_, err := svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime})
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)

	// Completed shift: day is terminal.
	_, err = svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, domain.CheckOutRequest{UserID: "user-1", At: baseTime.Add(8 * time.Hour)})
	require.NoError(t, err)
	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime.Add(9 * time.Hour)})
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)
}

func TestManageBreak_StartWhileOnBreak(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)
	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime.Add(time.Hour)})
	require.NoError(t, err)

	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime.Add(2 * time.Hour)})
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)
}

func TestManageBreak_EndWithoutOpenBreak(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)

	_, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakEnd, At: baseTime.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrNoOpenBreak)
}

func TestManageBreak_RoundTrip(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)

	rec, err := svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakStart, At: baseTime.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnBreak, rec.Status)

	rec, err = svc.ManageBreak(ctx, domain.BreakRequest{UserID: "user-1", Action: domain.BreakEnd, At: baseTime.Add(90 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPresent, rec.Status)
	assert.Equal(t, 30, rec.TotalBreakMinutes())
}

func TestBulkCheckIn_SkipsDuplicates(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, checkInReq("user-1", baseTime))
	require.NoError(t, err)

	result, err := svc.BulkCheckIn(ctx, []domain.CheckInRequest{
		checkInReq("user-1", baseTime.Add(time.Minute)),
		checkInReq("user-2", baseTime),
		checkInReq("user-3", baseTime),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestBulkCheckIn_PersistsAcceptedRowsInOneBatch(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)

	result, err := svc.BulkCheckIn(context.Background(), []domain.CheckInRequest{
		checkInReq("user-1", baseTime),
		checkInReq("user-2", baseTime),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	records, err := repo.FindShiftsByDay(context.Background(), "org-1", "2026-03-02")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, domain.StatusPresent, rec.Status)
		assert.NotEmpty(t, rec.ID)
	}
}

func TestBulkCheckIn_SkipsRepeatedRowWithinBatch(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)

	// The duplicate only exists inside the batch, not in the store yet.
	result, err := svc.BulkCheckIn(context.Background(), []domain.CheckInRequest{
		checkInReq("user-1", baseTime),
		checkInReq("user-1", baseTime.Add(time.Minute)),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestBulkCheckIn_CollectsRowErrors(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)

	result, err := svc.BulkCheckIn(context.Background(), []domain.CheckInRequest{
		{OrganizationID: "org-1", At: baseTime}, // missing user id
		checkInReq("user-2", baseTime),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, result.Errors, 1)
}

func TestBulkCheckIn_PersistFailureAbortsBatch(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	repo.BulkErr = errors.New("insert failed")
	svc := NewService(repo)

	_, err := svc.BulkCheckIn(context.Background(), []domain.CheckInRequest{
		checkInReq("user-1", baseTime),
	})
	assert.Error(t, err)
}

func TestCheckIn_ValidationFailure(t *testing.T) {
	repo := testutil.NewAttendanceRepo()
	svc := NewService(repo)

	_, err := svc.CheckIn(context.Background(), domain.CheckInRequest{OrganizationID: "org-1", At: baseTime})
	assert.Error(t, err)
}
