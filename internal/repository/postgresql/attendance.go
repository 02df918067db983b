package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, user_id, organization_id, branch_id, to_char(day, 'YYYY-MM-DD'),
	check_in_at, check_out_at, breaks, work_minutes, break_minutes,
	status, created_at, updated_at
`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	var breaksJSON []byte

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.OrganizationID, &rec.BranchID, &rec.Day,
		&rec.CheckInAt, &rec.CheckOutAt, &breaksJSON, &rec.WorkMinutes, &rec.BreakMinutes,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	if len(breaksJSON) > 0 {
		if err := json.Unmarshal(breaksJSON, &rec.Breaks); err != nil {
			return attendance.Record{}, fmt.Errorf("failed to decode breaks: %w", err)
		}
	}
	return rec, nil
}

// Create implements attendance.Repository.
func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	breaksJSON, err := json.Marshal(rec.Breaks)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to encode breaks: %w", err)
	}

	query := `
		INSERT INTO attendance_records (
			id, user_id, organization_id, branch_id, day,
			check_in_at, check_out_at, breaks, work_minutes, break_minutes, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.OrganizationID,
		rec.BranchID,
		rec.Day,
		rec.CheckInAt,
		rec.CheckOutAt,
		breaksJSON,
		rec.WorkMinutes,
		rec.BreakMinutes,
		rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", database.ClassifyError(err))
	}

	return rec, nil
}

// Update implements attendance.Repository.
func (r *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	breaksJSON, err := json.Marshal(rec.Breaks)
	if err != nil {
		return fmt.Errorf("failed to encode breaks: %w", err)
	}

	query := `
		UPDATE attendance_records
		SET check_out_at = $2, breaks = $3, work_minutes = $4,
			break_minutes = $5, status = $6, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		rec.ID, rec.CheckOutAt, breaksJSON, rec.WorkMinutes, rec.BreakMinutes, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", database.ClassifyError(err))
	}
	if commandTag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// FindOpenShift implements attendance.Repository.
func (r *attendanceRepository) FindOpenShift(ctx context.Context, userID, day string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = $1
		  AND day = $2
		  AND status != $3
		ORDER BY check_in_at DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, day, attendance.StatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to find open shift: %w", database.ClassifyError(err))
	}

	return rec, nil
}

// FindShiftsByDay implements attendance.Repository.
func (r *attendanceRepository) FindShiftsByDay(ctx context.Context, orgID, day string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE organization_id = $1
		  AND day = $2
		ORDER BY check_in_at
	`

	return r.queryRecords(ctx, q, query, orgID, day)
}

// FindOpenShiftsByDay implements attendance.Repository.
func (r *attendanceRepository) FindOpenShiftsByDay(ctx context.Context, orgID, day string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE organization_id = $1
		  AND day = $2
		  AND check_out_at IS NULL
		ORDER BY check_in_at
	`

	return r.queryRecords(ctx, q, query, orgID, day)
}

func (r *attendanceRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...any) ([]attendance.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", database.ClassifyError(err))
	}

	return records, nil
}

// BulkCreate implements attendance.Repository.
func (r *attendanceRepository) BulkCreate(ctx context.Context, recs []attendance.Record) error {
	if len(recs) == 0 {
		return nil
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO attendance_records (
				id, user_id, organization_id, branch_id, day,
				check_in_at, breaks, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		for _, rec := range recs {
			breaksJSON, err := json.Marshal(rec.Breaks)
			if err != nil {
				return fmt.Errorf("failed to encode breaks: %w", err)
			}
			if _, err := tx.Exec(ctx, query,
				rec.ID, rec.UserID, rec.OrganizationID, rec.BranchID, rec.Day,
				rec.CheckInAt, breaksJSON, rec.Status,
			); err != nil {
				return fmt.Errorf("failed to insert attendance record %s: %w", rec.ID, database.ClassifyError(err))
			}
		}
		return nil
	})
}
