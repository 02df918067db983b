package report

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/report"
)

// buildInsights renders deterministic narrative lines from the aggregated
// numbers. Degenerate days (empty roster, nobody present) get explicit
// messages instead of zero-filled statistics.
func buildInsights(sum report.Summary, p report.PunctualityBreakdown, comp *report.Comparison) []string {
	if sum.TotalEmployees == 0 {
		return []string{"No active employees on the roster; nothing to report."}
	}

	var out []string
	if sum.PresentCount == 0 {
		out = append(out, "No attendance has been recorded for this day.")
	} else {
		out = append(out, fmt.Sprintf("%d of %d employees present (%.1f%% attendance).",
			sum.PresentCount, sum.TotalEmployees, sum.AttendanceRate))

		lateTotal := p.LateCount + p.VeryLateCount
		switch {
		case lateTotal == 0 && sum.PresentCount == sum.TotalEmployees:
			out = append(out, "Everyone arrived on schedule; no lateness recorded.")
		case lateTotal == 0:
			out = append(out, "No late arrivals among present employees.")
		default:
			out = append(out, fmt.Sprintf("%d late arrival(s): %d under 30 minutes, %d of 30 minutes or more.",
				lateTotal, p.LateCount, p.VeryLateCount))
		}

		if p.ExtremelyLateCount > 0 {
			out = append(out, fmt.Sprintf("%d employee(s) arrived an hour or more after start time.",
				p.ExtremelyLateCount))
		}
		if sum.OvertimeCount > 0 {
			out = append(out, fmt.Sprintf("%d employee(s) have exceeded 8 hours.", sum.OvertimeCount))
		}
		if sum.CurrentlyWorking > 0 {
			out = append(out, fmt.Sprintf("%d employee(s) are still on shift.", sum.CurrentlyWorking))
		}
	}

	if comp != nil {
		switch {
		case comp.HoursDelta == nil:
			out = append(out, fmt.Sprintf("No attendance data recorded for %s; hour comparison unavailable.",
				comp.Label))
		case *comp.HoursDelta > 0:
			out = append(out, fmt.Sprintf("Total hours are up %.2f compared to %s.",
				*comp.HoursDelta, comp.Label))
		case *comp.HoursDelta < 0:
			out = append(out, fmt.Sprintf("Total hours are down %.2f compared to %s.",
				-*comp.HoursDelta, comp.Label))
		default:
			out = append(out, fmt.Sprintf("Total hours are unchanged from %s.", comp.Label))
		}
	}
	return out
}

func buildRecommendations(sum report.Summary, p report.PunctualityBreakdown, target report.TargetPerformance) []string {
	if sum.TotalEmployees == 0 {
		return nil
	}

	var out []string
	if sum.PresentCount == 0 {
		out = append(out, "Verify check-in availability: no employee has checked in.")
		return out
	}

	if sum.AttendanceRate < 70 {
		out = append(out, "Attendance is below 70%; follow up on absences.")
	}
	if lateTotal := p.LateCount + p.VeryLateCount; p.PresentCount > 0 &&
		float64(lateTotal)/float64(p.PresentCount) >= 0.3 {
		out = append(out, "Over 30% of present employees were late; review start-time policy.")
	}
	if p.VeryLateCount > 0 {
		out = append(out, fmt.Sprintf("Follow up individually with the %d employee(s) more than 30 minutes late.",
			p.VeryLateCount))
	}

	switch target.EfficiencyRating {
	case "Poor":
		out = append(out, "Hours are well below target; check for under-reporting or staffing gaps.")
	case "Fair":
		out = append(out, "Hours are below target; monitor through the week.")
	}

	if len(out) == 0 {
		out = append(out, "No action needed; attendance and punctuality are healthy.")
	}
	return out
}
