package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type ServiceImpl struct {
	repo attendance.Repository
}

func NewService(repo attendance.Repository) attendance.Service {
	return &ServiceImpl{repo: repo}
}

// CheckIn implements attendance.Service.
func (s *ServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	day := attendance.DayOf(req.At)

	_, err := s.repo.FindOpenShift(ctx, req.UserID, day)
	if err == nil {
		return attendance.Record{}, attendance.ErrDuplicateCheckIn
	}
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.Record{}, fmt.Errorf("failed to look up open shift: %w", err)
	}

	record := attendance.Record{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		BranchID:       req.BranchID,
		Day:            day,
		CheckInAt:      req.At,
		Status:         attendance.StatusPresent,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

// CheckOut implements attendance.Service. An open break is force-closed at
// the check-out timestamp so it is never lost from the break total.
func (s *ServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	record, err := s.repo.FindOpenShift(ctx, req.UserID, attendance.DayOf(req.At))
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.Record{}, attendance.ErrNoActiveShift
		}
		return attendance.Record{}, fmt.Errorf("failed to look up open shift: %w", err)
	}

	if !req.At.After(record.CheckInAt) {
		return attendance.Record{}, attendance.ErrCheckOutTooEarly
	}

	if open := record.OpenBreak(); open != nil {
		end := req.At
		open.EndAt = &end
	}

	at := req.At
	workMinutes := int(at.Sub(record.CheckInAt).Minutes())
	breakMinutes := record.TotalBreakMinutes()

	record.CheckOutAt = &at
	record.WorkMinutes = &workMinutes
	record.BreakMinutes = &breakMinutes
	record.Status = attendance.StatusCompleted
	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return record, nil
}

// ManageBreak implements attendance.Service.
func (s *ServiceImpl) ManageBreak(ctx context.Context, req attendance.BreakRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	record, err := s.repo.FindOpenShift(ctx, req.UserID, attendance.DayOf(req.At))
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			if req.Action == attendance.BreakStart {
				return attendance.Record{}, attendance.ErrNotCheckedIn
			}
			return attendance.Record{}, attendance.ErrNoOpenBreak
		}
		return attendance.Record{}, fmt.Errorf("failed to look up open shift: %w", err)
	}

	switch req.Action {
	case attendance.BreakStart:
		if record.Status != attendance.StatusPresent {
			return attendance.Record{}, attendance.ErrNotCheckedIn
		}
		record.Breaks = append(record.Breaks, attendance.BreakInterval{
			ID:      uuid.New().String(),
			StartAt: req.At,
		})
		record.Status = attendance.StatusOnBreak

	case attendance.BreakEnd:
		if record.Status != attendance.StatusOnBreak {
			return attendance.Record{}, attendance.ErrNoOpenBreak
		}
		open := record.OpenBreak()
		if open == nil {
			return attendance.Record{}, attendance.ErrNoOpenBreak
		}
		end := req.At
		open.EndAt = &end
		record.Status = attendance.StatusPresent
	}

	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return record, nil
}

// BulkCheckIn implements attendance.Service. Guards are applied per row
// and one bad row never rejects the batch; the accepted rows are then
// persisted in a single transactional insert.
func (s *ServiceImpl) BulkCheckIn(ctx context.Context, reqs []attendance.CheckInRequest) (attendance.BulkResult, error) {
	var result attendance.BulkResult
	var accepted []attendance.Record
	seen := make(map[string]bool, len(reqs))

	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("row %d (user %s): %w", i, req.UserID, err))
			continue
		}

		day := attendance.DayOf(req.At)
		if seen[req.UserID+"|"+day] {
			result.Skipped++
			continue
		}

		_, err := s.repo.FindOpenShift(ctx, req.UserID, day)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, attendance.ErrRecordNotFound) {
			result.Errors = append(result.Errors, fmt.Errorf("row %d (user %s): %w", i, req.UserID, err))
			continue
		}

		seen[req.UserID+"|"+day] = true
		accepted = append(accepted, attendance.Record{
			ID:             uuid.New().String(),
			UserID:         req.UserID,
			OrganizationID: req.OrganizationID,
			BranchID:       req.BranchID,
			Day:            day,
			CheckInAt:      req.At,
			Status:         attendance.StatusPresent,
		})
	}

	if len(accepted) > 0 {
		if err := s.repo.BulkCreate(ctx, accepted); err != nil {
			return attendance.BulkResult{}, fmt.Errorf("failed to bulk create attendance records: %w", err)
		}
		result.Created = len(accepted)
	}
	return result, nil
}
