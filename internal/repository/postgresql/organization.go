package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/organization"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/timeutil"
)

type organizationRepository struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.Repository {
	return &organizationRepository{db: db}
}

// ListActive implements organization.Repository.
func (r *organizationRepository) ListActive(ctx context.Context) ([]organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, timezone
		FROM organizations
		WHERE active = TRUE
		ORDER BY name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var orgs []organization.Organization
	for rows.Next() {
		var org organization.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read organizations: %w", database.ClassifyError(err))
	}

	return orgs, nil
}

type workingHoursRepository struct {
	db *database.DB
}

func NewWorkingHoursRepository(db *database.DB) organization.WorkingHoursProvider {
	return &workingHoursRepository{db: db}
}

type workingDayRow struct {
	startTime       string
	endTime         string
	expectedMinutes int
	timezone        string
	lateGraceMins   int
}

func (r *workingHoursRepository) workingDayFor(ctx context.Context, orgID string, weekday time.Weekday) (workingDayRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT w.start_time, w.end_time, w.expected_work_minutes,
			   o.timezone, o.late_grace_minutes
		FROM organization_working_hours w
		JOIN organizations o ON o.id = w.organization_id
		WHERE w.organization_id = $1
		  AND w.weekday = $2
	`

	var row workingDayRow
	err := q.QueryRow(ctx, query, orgID, int(weekday)).Scan(
		&row.startTime, &row.endTime, &row.expectedMinutes,
		&row.timezone, &row.lateGraceMins,
	)
	if err != nil {
		return workingDayRow{}, err
	}
	return row, nil
}

// GetWorkingDayInfo implements organization.WorkingHoursProvider. A
// weekday with no configured hours is a non-working day, not an error.
func (r *workingHoursRepository) GetWorkingDayInfo(ctx context.Context, orgID string, date time.Time) (organization.WorkingDayInfo, error) {
	row, err := r.workingDayFor(ctx, orgID, date.Weekday())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.WorkingDayInfo{IsWorkingDay: false}, nil
		}
		return organization.WorkingDayInfo{}, fmt.Errorf("failed to get working day info: %w", database.ClassifyError(err))
	}

	return organization.WorkingDayInfo{
		IsWorkingDay:        true,
		StartTime:           row.startTime,
		EndTime:             row.endTime,
		ExpectedWorkMinutes: row.expectedMinutes,
	}, nil
}

// IsUserLate implements organization.WorkingHoursProvider. Lateness is
// measured in the organization's own timezone against its start time; the
// configured grace period forgives arrivals inside it entirely.
func (r *workingHoursRepository) IsUserLate(ctx context.Context, orgID string, checkInAt time.Time) (organization.Lateness, error) {
	row, err := r.workingDayFor(ctx, orgID, checkInAt.Weekday())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Lateness{}, nil
		}
		return organization.Lateness{}, fmt.Errorf("failed to get lateness policy: %w", database.ClassifyError(err))
	}

	loc, err := time.LoadLocation(row.timezone)
	if err != nil {
		loc = time.UTC
	}

	startMins, err := timeutil.TimeToMinutes(row.startTime)
	if err != nil {
		return organization.Lateness{}, fmt.Errorf("invalid start time %q: %w", row.startTime, err)
	}

	lateBy := timeutil.MinuteOfDay(checkInAt.In(loc)) - startMins
	if lateBy <= row.lateGraceMins {
		return organization.Lateness{}, nil
	}

	return organization.Lateness{IsLate: true, LateMinutes: lateBy}, nil
}
