package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/organization"
	report "github.com/cmlabs-hris/attendance-engine-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/dedup"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/testutil"
	"github.com/cmlabs-hris/attendance-engine-go/internal/service/overtime"
	reportsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allWeekHours() *testutil.WorkingHoursStub {
	return &testutil.WorkingHoursStub{
		InfoFn: func(orgID string, date time.Time) (organization.WorkingDayInfo, error) {
			return organization.WorkingDayInfo{
				IsWorkingDay:        true,
				StartTime:           "09:00",
				EndTime:             "17:00",
				ExpectedWorkMinutes: 480,
			}, nil
		},
	}
}

func newEngineJobs(t *testing.T, orgs *testutil.OrgRepo, hours *testutil.WorkingHoursStub, sink *testutil.CaptureSink, now time.Time) *EngineJobs {
	t.Helper()

	repo := testutil.NewAttendanceRepo()
	rosters := &testutil.RosterStub{Users: map[string][]roster.User{
		"org-1": {{ID: "u1", Name: "Alice"}},
	}}

	overtimeGuard := dedup.NewCache(24 * time.Hour)
	t.Cleanup(overtimeGuard.Stop)
	reportGuard := dedup.NewCache(24 * time.Hour)
	t.Cleanup(reportGuard.Stop)

	interval := 5 * time.Minute
	overtimeSvc := overtime.NewService(orgs, hours, repo, sink, overtimeGuard, interval, time.UTC)
	reportSvc := reportsvc.NewService(repo, rosters, &testutil.TargetStub{}, hours, sink, reportGuard, time.UTC)

	jobs := NewEngineJobs(orgs, hours, overtimeSvc, reportSvc, interval, time.UTC)
	jobs.nowFn = func() time.Time { return now }
	return jobs
}

func TestScanReports_DispatchesInsideWindow(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(9*time.Hour + 5*time.Minute)

	orgs := &testutil.OrgRepo{Orgs: []organization.Organization{{ID: "org-1", Name: "Acme"}}}
	sink := &testutil.CaptureSink{}
	jobs := newEngineJobs(t, orgs, allWeekHours(), sink, now)

	require.NoError(t, jobs.scanReports(context.Background(), report.KindMorning))
	assert.Len(t, sink.ByKind(notification.KindMorningReport), 1)

	// A second tick in the same window is absorbed by the dispatch dedup.
	require.NoError(t, jobs.scanReports(context.Background(), report.KindMorning))
	assert.Len(t, sink.ByKind(notification.KindMorningReport), 1)
}

func TestScanReports_OutsideWindowIsNoop(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(12 * time.Hour)

	orgs := &testutil.OrgRepo{Orgs: []organization.Organization{{ID: "org-1"}}}
	sink := &testutil.CaptureSink{}
	jobs := newEngineJobs(t, orgs, allWeekHours(), sink, now)

	require.NoError(t, jobs.scanReports(context.Background(), report.KindMorning))
	require.NoError(t, jobs.scanReports(context.Background(), report.KindEvening))
	assert.Empty(t, sink.Events)
}

func TestScanReports_ListFailure(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(9*time.Hour + 5*time.Minute)

	orgs := &testutil.OrgRepo{Err: errors.New("boom")}
	sink := &testutil.CaptureSink{}
	jobs := newEngineJobs(t, orgs, allWeekHours(), sink, now)

	assert.Error(t, jobs.scanReports(context.Background(), report.KindMorning))
}

func TestScanReports_ConnectivityAbortsTick(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(9*time.Hour + 5*time.Minute)

	orgs := &testutil.OrgRepo{Orgs: []organization.Organization{{ID: "org-1"}, {ID: "org-2"}}}
	hours := &testutil.WorkingHoursStub{
		InfoFn: func(orgID string, date time.Time) (organization.WorkingDayInfo, error) {
			return organization.WorkingDayInfo{}, database.ErrConnectivity
		},
	}
	sink := &testutil.CaptureSink{}
	jobs := newEngineJobs(t, orgs, hours, sink, now)

	err := jobs.scanReports(context.Background(), report.KindMorning)
	assert.ErrorIs(t, err, database.ErrConnectivity)
	assert.Empty(t, sink.Events)
}

func TestScheduler_RunOnceExecutesRegisteredJobs(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	ran := 0
	s.AddJob("probe", time.Hour, func(ctx context.Context) error {
		ran++
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, 1, ran)
}
