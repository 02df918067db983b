// Package overtime implements the periodic scan that reminds still-open
// shifts after an organization's close time.
package overtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/organization"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/dedup"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/timeutil"
)

// GraceMinutes is how long after close time a shift must still be open
// before it counts as overtime. The detection window opens at
// close+GraceMinutes and spans one scan interval so each organization is
// processed by exactly one tick.
const GraceMinutes = 10

type Service struct {
	orgs     organization.Repository
	hours    organization.WorkingHoursProvider
	shifts   attendance.Repository
	sink     notification.Sink
	guard    dedup.Guard
	interval time.Duration
	loc      *time.Location

	nowFn        func() time.Time
	running      atomic.Bool
	lastResetDay string
}

func NewService(
	orgs organization.Repository,
	hours organization.WorkingHoursProvider,
	shifts attendance.Repository,
	sink notification.Sink,
	guard dedup.Guard,
	interval time.Duration,
	loc *time.Location,
) *Service {
	return &Service{
		orgs:     orgs,
		hours:    hours,
		shifts:   shifts,
		sink:     sink,
		guard:    guard,
		interval: interval,
		loc:      loc,
		nowFn:    time.Now,
	}
}

// Scan runs one overtime tick across all organizations. A tick already in
// progress causes the next one to no-op rather than queue; ticks are
// frequent and safe to skip. A connectivity failure aborts the whole tick,
// which the next scheduled tick retries naturally.
func (s *Service) Scan(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		slog.Info("Overtime: previous scan still running, skipping tick")
		return nil
	}
	defer s.running.Store(false)

	now := s.nowFn().In(s.loc)
	s.resetAtMidnight(now)

	orgs, err := s.orgs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	for _, org := range orgs {
		if err := s.scanOrganization(ctx, org, now); err != nil {
			if errors.Is(err, database.ErrConnectivity) {
				return fmt.Errorf("aborting overtime tick: %w", err)
			}
			slog.Error("Overtime: organization scan failed",
				"organization_id", org.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) scanOrganization(ctx context.Context, org organization.Organization, now time.Time) error {
	info, err := s.hours.GetWorkingDayInfo(ctx, org.ID, now)
	if err != nil {
		return fmt.Errorf("failed to get working day info: %w", err)
	}
	if !info.IsWorkingDay {
		return nil
	}

	closeMins, err := timeutil.TimeToMinutes(info.EndTime)
	if err != nil {
		return fmt.Errorf("invalid close time %q: %w", info.EndTime, err)
	}

	nowMins := timeutil.MinuteOfDay(now)
	windowStart := closeMins + GraceMinutes
	windowEnd := windowStart + int(s.interval.Minutes())
	if nowMins < windowStart || nowMins >= windowEnd {
		return nil
	}

	day := attendance.DayOf(now)
	shifts, err := s.shifts.FindOpenShiftsByDay(ctx, org.ID, day)
	if err != nil {
		return fmt.Errorf("failed to list open shifts: %w", err)
	}

	closeToday := time.Date(now.Year(), now.Month(), now.Day(),
		closeMins/60, closeMins%60, 0, 0, s.loc)

	reminded := 0
	for _, shift := range shifts {
		// A shift that starts after close time is late-evening work, not
		// overtime.
		if !shift.CheckInAt.In(s.loc).Before(closeToday) {
			continue
		}

		overtimeMinutes := int(now.Sub(closeToday).Minutes())
		if overtimeMinutes < GraceMinutes {
			continue
		}

		key := fmt.Sprintf("overtime:%s:%s", shift.ID, day)
		if s.guard.HasFired(key) {
			continue
		}

		payload := notification.OvertimeReminder{
			RecordID:        shift.ID,
			UserID:          shift.UserID,
			OrganizationID:  org.ID,
			Day:             day,
			OvertimeMinutes: overtimeMinutes,
		}
		if err := s.sink.Emit(ctx, notification.KindOvertimeReminder, payload); err != nil {
			// Leave the key unmarked so the next tick can retry this shift.
			slog.Error("Overtime: failed to emit reminder",
				"record_id", shift.ID, "error", err)
			continue
		}
		s.guard.MarkFired(key)
		reminded++
	}

	if reminded > 0 {
		slog.Info("Overtime: reminders sent",
			"organization_id", org.ID, "count", reminded)
	}
	return nil
}

// resetAtMidnight clears the dedup cache on the first tick of a new day so
// every shift gets a fresh cycle.
func (s *Service) resetAtMidnight(now time.Time) {
	day := attendance.DayOf(now)
	if s.lastResetDay == "" {
		s.lastResetDay = day
		return
	}
	if day != s.lastResetDay {
		s.guard.Reset()
		s.lastResetDay = day
		slog.Info("Overtime: dedup cache reset for new day", "day", day)
	}
}
