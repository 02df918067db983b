// Package report implements the daily report aggregation engine: it turns
// one organization-day of raw attendance rows into punctuality buckets,
// branch/role rollups and target-vs-actual metrics.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/organization"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/dedup"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/timeutil"
)

const (
	morningOffsetMinutes   = 5
	eveningOffsetMinutes   = 30
	windowToleranceMinutes = 5

	overtimeThresholdHours        = 8.0
	veryLateThresholdMinutes      = 30
	extremelyLateThresholdMinutes = 60

	fallbackStartMinutes = 9 * 60
	comparisonLookback   = 7
)

type Service struct {
	shifts  attendance.Repository
	rosters roster.Provider
	targets roster.TargetProvider
	hours   organization.WorkingHoursProvider
	sink    notification.Sink
	guard   dedup.Guard
	loc     *time.Location

	nowFn func() time.Time
}

func NewService(
	shifts attendance.Repository,
	rosters roster.Provider,
	targets roster.TargetProvider,
	hours organization.WorkingHoursProvider,
	sink notification.Sink,
	guard dedup.Guard,
	loc *time.Location,
) *Service {
	return &Service{
		shifts:  shifts,
		rosters: rosters,
		targets: targets,
		hours:   hours,
		sink:    sink,
		guard:   guard,
		loc:     loc,
		nowFn:   time.Now,
	}
}

// InDispatchWindow reports whether now falls inside the acceptance window
// for kind: start+5m for morning, end+30m for evening, each with a
// ±5-minute tolerance matching the scan interval.
func InDispatchWindow(info organization.WorkingDayInfo, kind report.Kind, now time.Time) bool {
	var anchor string
	var offset int
	switch kind {
	case report.KindMorning:
		anchor = info.StartTime
		offset = morningOffsetMinutes
	case report.KindEvening:
		anchor = info.EndTime
		offset = eveningOffsetMinutes
	default:
		return false
	}

	anchorMins, err := timeutil.TimeToMinutes(anchor)
	if err != nil {
		return false
	}

	target := anchorMins + offset
	nowMins := timeutil.MinuteOfDay(now)
	return nowMins >= target-windowToleranceMinutes && nowMins <= target+windowToleranceMinutes
}

// Dispatch generates today's report and emits it, at most once per
// (organization, kind, day). The dedup key is only marked after a
// successful emit so a failed dispatch is retried on the next tick.
func (s *Service) Dispatch(ctx context.Context, org organization.Organization, kind report.Kind) error {
	now := s.nowFn().In(s.loc)
	day := attendance.DayOf(now)

	key := fmt.Sprintf("report:%s:%s:%s", org.ID, kind, day)
	if s.guard.HasFired(key) {
		return report.ErrAlreadyDispatched
	}

	payload, err := s.Generate(ctx, org, now, kind)
	if err != nil {
		return err
	}

	eventKind := notification.KindMorningReport
	if kind == report.KindEvening {
		eventKind = notification.KindEveningReport
	}
	if err := s.sink.Emit(ctx, eventKind, payload); err != nil {
		return fmt.Errorf("failed to emit %s report: %w", kind, err)
	}

	s.guard.MarkFired(key)
	slog.Info("Report: dispatched",
		"organization_id", org.ID, "kind", kind, "day", day)
	return nil
}

// Generate builds the structured report payload for one organization and
// day. "Now" is captured once and threaded through every real-time hours
// computation so the report never disagrees with itself about the current
// time.
func (s *Service) Generate(ctx context.Context, org organization.Organization, day time.Time, kind report.Kind) (report.DailyReport, error) {
	now := s.nowFn().In(s.loc)
	dayKey := attendance.DayOf(day)

	users, err := s.rosters.ListActiveUsers(ctx, org.ID)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("failed to resolve roster: %w", err)
	}

	records, err := s.shifts.FindShiftsByDay(ctx, org.ID, dayKey)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	info, err := s.hours.GetWorkingDayInfo(ctx, org.ID, day)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("failed to get working day info: %w", err)
	}
	if !info.IsWorkingDay {
		return report.DailyReport{}, report.ErrNotWorkingDay
	}

	startMins, err := timeutil.TimeToMinutes(info.StartTime)
	if err != nil {
		slog.Warn("Report: invalid start time, falling back to 09:00",
			"organization_id", org.ID, "start_time", info.StartTime)
		startMins = fallbackStartMinutes
	}

	entries := s.categorize(ctx, org.ID, users, records, startMins, now)
	summary := summarize(entries)
	punctuality := punctualityBreakdown(entries)

	var comparison *report.Comparison
	if kind == report.KindEvening {
		comparison = s.resolveComparison(ctx, org.ID, day, summary.TotalHours, now)
	}

	target := s.targetPerformance(ctx, users, entries, kind, info, now)

	return report.DailyReport{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Kind:             kind,
		Day:              dayKey,
		GeneratedAt:      now.Format(time.RFC3339),
		Summary:          summary,
		Punctuality:      punctuality,
		Branches:         rollupBy(entries, func(e report.EmployeeEntry) string { return e.Branch }),
		Roles:            rollupBy(entries, func(e report.EmployeeEntry) string { return e.Role }),
		Target:           target,
		Comparison:       comparison,
		Employees:        entries,
		Insights:         buildInsights(summary, punctuality, comparison),
		Recommendations:  buildRecommendations(summary, punctuality, target),
	}, nil
}

// GenerateRangeSummary folds the working days in [from, to] into a single
// period rollup. Failures on individual days are logged and skipped.
func (s *Service) GenerateRangeSummary(ctx context.Context, org organization.Organization, from, to time.Time) (report.RangeSummary, error) {
	if to.Before(from) {
		return report.RangeSummary{}, report.ErrInvalidDateRange
	}

	now := s.nowFn().In(s.loc)

	users, err := s.rosters.ListActiveUsers(ctx, org.ID)
	if err != nil {
		return report.RangeSummary{}, fmt.Errorf("failed to resolve roster: %w", err)
	}

	out := report.RangeSummary{
		OrganizationID: org.ID,
		From:           attendance.DayOf(from),
		To:             attendance.DayOf(to),
	}

	var rateSum float64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		info, err := s.hours.GetWorkingDayInfo(ctx, org.ID, d)
		if err != nil {
			slog.Warn("Report: skipping day in range summary",
				"organization_id", org.ID, "day", attendance.DayOf(d), "error", err)
			continue
		}
		if !info.IsWorkingDay {
			continue
		}
		out.WorkingDays++

		records, err := s.shifts.FindShiftsByDay(ctx, org.ID, attendance.DayOf(d))
		if err != nil {
			slog.Warn("Report: skipping day in range summary",
				"organization_id", org.ID, "day", attendance.DayOf(d), "error", err)
			continue
		}

		present := make(map[string]bool)
		for _, r := range records {
			out.TotalHours += timeutil.RealTimeHours(r.CheckInAt, r.CheckOutAt, r.WorkMinutes, now)
			present[r.UserID] = true
		}
		if len(users) > 0 {
			rateSum += float64(len(present)) / float64(len(users)) * 100
		}
	}

	if out.WorkingDays > 0 {
		out.AverageDailyHours = round2(out.TotalHours / float64(out.WorkingDays))
		out.AverageAttendance = round1(rateSum / float64(out.WorkingDays))
	}
	out.TotalHours = round2(out.TotalHours)
	return out, nil
}

func (s *Service) categorize(ctx context.Context, orgID string, users []roster.User, records []attendance.Record, startMins int, now time.Time) []report.EmployeeEntry {
	recordByUser := make(map[string]attendance.Record, len(records))
	for _, r := range records {
		recordByUser[r.UserID] = r
	}

	entries := make([]report.EmployeeEntry, 0, len(users))
	for _, u := range users {
		entry := report.EmployeeEntry{
			UserID: u.ID,
			Name:   u.Name,
			Branch: u.Branch,
			Role:   u.Role,
		}

		if rec, ok := recordByUser[u.ID]; ok {
			entry.Present = true
			entry.HoursWorked = round2(timeutil.RealTimeHours(rec.CheckInAt, rec.CheckOutAt, rec.WorkMinutes, now))
			entry.Working = rec.CheckOutAt == nil
			entry.Completed = rec.CheckOutAt != nil
			entry.Overtime = entry.HoursWorked > overtimeThresholdHours

			in := rec.CheckInAt.In(s.loc).Format("15:04")
			entry.CheckInTime = &in
			if rec.CheckOutAt != nil {
				out := rec.CheckOutAt.In(s.loc).Format("15:04")
				entry.CheckOutTime = &out
			}

			s.classifyPunctuality(ctx, orgID, rec, startMins, &entry)
		}

		entries = append(entries, entry)
	}
	return entries
}

func (s *Service) classifyPunctuality(ctx context.Context, orgID string, rec attendance.Record, startMins int, entry *report.EmployeeEntry) {
	checkInMins := timeutil.MinuteOfDay(rec.CheckInAt.In(s.loc))
	if checkInMins < startMins {
		entry.Bucket = report.BucketEarly
		return
	}

	lateness, err := s.hours.IsUserLate(ctx, orgID, rec.CheckInAt)
	if err != nil {
		// Lateness policy unavailable; fall back to the raw offset from
		// start time.
		slog.Warn("Report: lateness policy unavailable, using raw offset",
			"organization_id", orgID, "error", err)
		offset := checkInMins - startMins
		lateness = organization.Lateness{IsLate: offset > 0, LateMinutes: offset}
	}

	if !lateness.IsLate {
		entry.Bucket = report.BucketOnTime
		return
	}

	entry.LateMinutes = lateness.LateMinutes
	if lateness.LateMinutes >= veryLateThresholdMinutes {
		entry.Bucket = report.BucketVeryLate
	} else {
		entry.Bucket = report.BucketLate
	}
	entry.ExtremelyLate = lateness.LateMinutes >= extremelyLateThresholdMinutes
}

func summarize(entries []report.EmployeeEntry) report.Summary {
	sum := report.Summary{TotalEmployees: len(entries)}
	for _, e := range entries {
		if !e.Present {
			sum.AbsentCount++
			continue
		}
		sum.PresentCount++
		if e.Working {
			sum.CurrentlyWorking++
		}
		if e.Completed {
			sum.CompletedShifts++
		}
		if e.Overtime {
			sum.OvertimeCount++
		}
		sum.TotalHours += e.HoursWorked
	}

	if sum.TotalEmployees > 0 {
		sum.AttendanceRate = round1(float64(sum.PresentCount) / float64(sum.TotalEmployees) * 100)
	}
	if sum.PresentCount > 0 {
		sum.AverageHours = round2(sum.TotalHours / float64(sum.PresentCount))
	}
	sum.TotalHours = round2(sum.TotalHours)
	return sum
}

// punctualityBreakdown computes bucket counts and percentages over the
// present population. With nobody present every percentage is 0.
func punctualityBreakdown(entries []report.EmployeeEntry) report.PunctualityBreakdown {
	var b report.PunctualityBreakdown
	for _, e := range entries {
		if !e.Present {
			continue
		}
		b.PresentCount++
		switch e.Bucket {
		case report.BucketEarly:
			b.EarlyCount++
		case report.BucketOnTime:
			b.OnTimeCount++
		case report.BucketLate:
			b.LateCount++
		case report.BucketVeryLate:
			b.VeryLateCount++
		}
		if e.ExtremelyLate {
			b.ExtremelyLateCount++
		}
	}

	if b.PresentCount == 0 {
		return b
	}
	n := float64(b.PresentCount)
	b.EarlyPercentage = round1(float64(b.EarlyCount) / n * 100)
	b.OnTimePercentage = round1(float64(b.OnTimeCount) / n * 100)
	b.LatePercentage = round1(float64(b.LateCount) / n * 100)
	b.VeryLatePercentage = round1(float64(b.VeryLateCount) / n * 100)
	return b
}

// rollupBy groups entries with an explicit two-pass algorithm: first
// collect the group keys, then accumulate each group. Output is sorted by
// name for deterministic rendering.
func rollupBy(entries []report.EmployeeEntry, key func(report.EmployeeEntry) string) []report.GroupRollup {
	groupKey := func(e report.EmployeeEntry) string {
		if k := key(e); k != "" {
			return k
		}
		return "Unassigned"
	}

	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, e := range entries {
		k := groupKey(e)
		if !seen[k] {
			seen[k] = true
			names = append(names, k)
		}
	}
	sort.Strings(names)

	out := make([]report.GroupRollup, 0, len(names))
	for _, name := range names {
		var group []report.EmployeeEntry
		for _, e := range entries {
			if groupKey(e) == name {
				group = append(group, e)
			}
		}

		sum := summarize(group)
		out = append(out, report.GroupRollup{
			Name:           name,
			Headcount:      sum.TotalEmployees,
			PresentCount:   sum.PresentCount,
			AttendanceRate: sum.AttendanceRate,
			TotalHours:     sum.TotalHours,
			AverageHours:   sum.AverageHours,
			Punctuality:    punctualityBreakdown(group),
		})
	}
	return out
}

func (s *Service) targetPerformance(ctx context.Context, users []roster.User, entries []report.EmployeeEntry, kind report.Kind, info organization.WorkingDayInfo, now time.Time) report.TargetPerformance {
	var expected float64
	for _, u := range users {
		target, err := s.targets.GetUserTarget(ctx, u.ID)
		if err != nil || target.HoursWorked <= 0 {
			expected += roster.DefaultTargetHours
			continue
		}
		expected += target.HoursWorked
	}

	var actual float64
	for _, e := range entries {
		actual += e.HoursWorked
	}

	perf := report.TargetPerformance{
		ExpectedDailyHours: round2(expected),
		ActualHours:        round2(actual),
	}
	if expected > 0 {
		perf.TargetAchievementRate = round1(actual / expected * 100)
	}
	if actual >= expected {
		perf.HoursOverTarget = round2(actual - expected)
	} else {
		perf.HoursUnderTarget = round2(expected - actual)
	}
	perf.EfficiencyRating = ratingFor(perf.TargetAchievementRate)

	// Morning reports project end-of-day hours from progress so far.
	if kind == report.KindMorning {
		progress := timeutil.WorkDayProgress(now, info.StartTime)
		if progress > 0 {
			projected := round2(actual / progress)
			onTrack := projected >= expected
			perf.ProjectedHours = &projected
			perf.OnTrack = &onTrack
		}
	}
	return perf
}

func ratingFor(rate float64) string {
	switch {
	case rate >= 95:
		return "Excellent"
	case rate >= 85:
		return "Good"
	case rate >= 75:
		return "Fair"
	default:
		return "Poor"
	}
}

// resolveComparison finds the most recent prior working day and loads its
// totals. A resolved day with no loadable data keeps HoursDelta nil so the
// renderer can say "no data" instead of "no change".
func (s *Service) resolveComparison(ctx context.Context, orgID string, day time.Time, todayHours float64, now time.Time) *report.Comparison {
	prev, daysBack, ok := s.findComparisonDay(ctx, orgID, day)
	if !ok {
		return nil
	}

	label := "yesterday"
	if daysBack > 1 {
		label = fmt.Sprintf("%d days ago", daysBack)
	}
	comp := &report.Comparison{Day: attendance.DayOf(prev), Label: label}

	records, err := s.shifts.FindShiftsByDay(ctx, orgID, attendance.DayOf(prev))
	if err != nil {
		slog.Warn("Report: failed to load comparison day",
			"organization_id", orgID, "day", comp.Day, "error", err)
		return comp
	}

	seen := make(map[string]bool)
	for _, r := range records {
		comp.TotalHours += timeutil.RealTimeHours(r.CheckInAt, r.CheckOutAt, r.WorkMinutes, now)
		if !seen[r.UserID] {
			seen[r.UserID] = true
			comp.PresentCount++
		}
	}
	comp.TotalHours = round2(comp.TotalHours)

	if len(records) > 0 {
		delta := round2(todayHours - comp.TotalHours)
		comp.HoursDelta = &delta
	}
	return comp
}

// findComparisonDay walks back up to 7 calendar days looking for a working
// day; if the calendar is unavailable it falls back to the last Mon-Fri
// business day.
func (s *Service) findComparisonDay(ctx context.Context, orgID string, day time.Time) (time.Time, int, bool) {
	for back := 1; back <= comparisonLookback; back++ {
		candidate := day.AddDate(0, 0, -back)
		info, err := s.hours.GetWorkingDayInfo(ctx, orgID, candidate)
		if err != nil {
			return lastBusinessDay(day)
		}
		if info.IsWorkingDay {
			return candidate, back, true
		}
	}
	return time.Time{}, 0, false
}

func lastBusinessDay(day time.Time) (time.Time, int, bool) {
	for back := 1; back <= comparisonLookback; back++ {
		candidate := day.AddDate(0, 0, -back)
		if wd := candidate.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return candidate, back, true
		}
	}
	return time.Time{}, 0, false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
