package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/organization"
	report "github.com/cmlabs-hris/attendance-engine-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/service/overtime"
	reportsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/report"
)

// EngineJobs wires the periodic scans into the scheduler. All three jobs
// share one tick interval; the services gate on clock windows themselves
// so a tick outside any window is a cheap no-op.
type EngineJobs struct {
	orgs        organization.Repository
	hours       organization.WorkingHoursProvider
	overtimeSvc *overtime.Service
	reportSvc   *reportsvc.Service
	interval    time.Duration
	loc         *time.Location

	nowFn func() time.Time
}

func NewEngineJobs(
	orgs organization.Repository,
	hours organization.WorkingHoursProvider,
	overtimeSvc *overtime.Service,
	reportSvc *reportsvc.Service,
	interval time.Duration,
	loc *time.Location,
) *EngineJobs {
	return &EngineJobs{
		orgs:        orgs,
		hours:       hours,
		overtimeSvc: overtimeSvc,
		reportSvc:   reportSvc,
		interval:    interval,
		loc:         loc,
		nowFn:       time.Now,
	}
}

func (j *EngineJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("overtime_scan", j.interval, j.overtimeSvc.Scan)
	scheduler.AddJob("morning_report_scan", j.interval, func(ctx context.Context) error {
		return j.scanReports(ctx, report.KindMorning)
	})
	scheduler.AddJob("evening_report_scan", j.interval, func(ctx context.Context) error {
		return j.scanReports(ctx, report.KindEvening)
	})
}

// scanReports dispatches one report kind to every organization whose clock
// window is open right now. Per-organization failures are logged and
// skipped; a connectivity failure aborts the tick.
func (j *EngineJobs) scanReports(ctx context.Context, kind report.Kind) error {
	now := j.nowFn().In(j.loc)

	orgs, err := j.orgs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	dispatched := 0
	for _, org := range orgs {
		info, err := j.hours.GetWorkingDayInfo(ctx, org.ID, now)
		if err != nil {
			if errors.Is(err, database.ErrConnectivity) {
				return fmt.Errorf("aborting %s report tick: %w", kind, err)
			}
			slog.Error("Cron: failed to get working day info",
				"organization_id", org.ID, "error", err)
			continue
		}
		if !info.IsWorkingDay || !reportsvc.InDispatchWindow(info, kind, now) {
			continue
		}

		if err := j.reportSvc.Dispatch(ctx, org, kind); err != nil {
			if errors.Is(err, report.ErrAlreadyDispatched) {
				continue
			}
			if errors.Is(err, database.ErrConnectivity) {
				return fmt.Errorf("aborting %s report tick: %w", kind, err)
			}
			slog.Error("Cron: report dispatch failed",
				"organization_id", org.ID, "kind", kind, "error", err)
			continue
		}
		dispatched++
	}

	if dispatched > 0 {
		slog.Info("Cron: reports dispatched", "kind", kind, "count", dispatched)
	}
	return nil
}
