package report

// Kind selects the daily report variant. Morning reports are gated on the
// organization's start time, evening reports on its end time.
type Kind string

const (
	KindMorning Kind = "MORNING"
	KindEvening Kind = "EVENING"
)

// PunctualityBucket classifies one check-in against the organization's
// start time. Derived, never persisted.
type PunctualityBucket string

const (
	BucketEarly    PunctualityBucket = "EARLY"
	BucketOnTime   PunctualityBucket = "ON_TIME"
	BucketLate     PunctualityBucket = "LATE"      // late, under 30 minutes
	BucketVeryLate PunctualityBucket = "VERY_LATE" // 30 minutes or more
)

// EmployeeEntry is one roster member's resolved state for the report day.
type EmployeeEntry struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Branch       string  `json:"branch"`
	Role         string  `json:"role"`
	Present      bool    `json:"present"`
	Working      bool    `json:"currently_working"`
	Completed    bool    `json:"completed_shift"`
	Overtime     bool    `json:"overtime"`
	HoursWorked  float64 `json:"hours_worked"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`

	Bucket        PunctualityBucket `json:"punctuality_bucket,omitempty"`
	LateMinutes   int               `json:"late_minutes"`
	ExtremelyLate bool              `json:"extremely_late"` // 60 minutes or more, carried as metadata
}

// Summary holds the organization-wide headline numbers.
type Summary struct {
	TotalEmployees   int     `json:"total_employees"`
	PresentCount     int     `json:"present_count"`
	AbsentCount      int     `json:"absent_count"`
	CurrentlyWorking int     `json:"currently_working"`
	CompletedShifts  int     `json:"completed_shifts"`
	OvertimeCount    int     `json:"overtime_count"`
	AttendanceRate   float64 `json:"attendance_rate"`
	TotalHours       float64 `json:"total_hours"`
	AverageHours     float64 `json:"average_hours"`
}

// PunctualityBreakdown carries bucket counts and percentages over the
// present population. All percentages are 0 when nobody is present.
type PunctualityBreakdown struct {
	PresentCount       int `json:"present_count"`
	EarlyCount         int `json:"early_count"`
	OnTimeCount        int `json:"on_time_count"`
	LateCount          int `json:"late_count"`
	VeryLateCount      int `json:"very_late_count"`
	ExtremelyLateCount int `json:"extremely_late_count"`

	EarlyPercentage    float64 `json:"early_percentage"`
	OnTimePercentage   float64 `json:"on_time_percentage"`
	LatePercentage     float64 `json:"late_percentage"`
	VeryLatePercentage float64 `json:"very_late_percentage"`
}

// GroupRollup aggregates the categorized set by branch or role.
type GroupRollup struct {
	Name           string               `json:"name"`
	Headcount      int                  `json:"headcount"`
	PresentCount   int                  `json:"present_count"`
	AttendanceRate float64              `json:"attendance_rate"`
	TotalHours     float64              `json:"total_hours"`
	AverageHours   float64              `json:"average_hours"`
	Punctuality    PunctualityBreakdown `json:"punctuality"`
}

// TargetPerformance compares aggregate actual hours against the summed
// per-user daily targets.
type TargetPerformance struct {
	ExpectedDailyHours    float64 `json:"expected_daily_hours"`
	ActualHours           float64 `json:"actual_hours"`
	TargetAchievementRate float64 `json:"target_achievement_rate"`
	HoursOverTarget       float64 `json:"hours_over_target"`
	HoursUnderTarget      float64 `json:"hours_under_target"`
	EfficiencyRating      string  `json:"efficiency_rating"`

	// Morning projection only.
	ProjectedHours *float64 `json:"projected_hours,omitempty"`
	OnTrack        *bool    `json:"on_track,omitempty"`
}

// Comparison references the most recent prior working day (evening only).
type Comparison struct {
	Day          string   `json:"day"`
	Label        string   `json:"label"` // "yesterday", "2 days ago", ...
	TotalHours   float64  `json:"total_hours"`
	PresentCount int      `json:"present_count"`
	HoursDelta   *float64 `json:"hours_delta,omitempty"` // nil when no data for either day
}

// DailyReport is the structured payload handed to any renderer (email,
// dashboard, API).
type DailyReport struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	Kind             Kind   `json:"kind"`
	Day              string `json:"day"`
	GeneratedAt      string `json:"generated_at"`

	Summary     Summary              `json:"summary"`
	Punctuality PunctualityBreakdown `json:"punctuality"`
	Branches    []GroupRollup        `json:"branches"`
	Roles       []GroupRollup        `json:"roles"`
	Target      TargetPerformance    `json:"target"`
	Comparison  *Comparison          `json:"comparison,omitempty"`
	Employees   []EmployeeEntry      `json:"employees"`

	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// RangeSummary folds a span of daily reports into one period rollup.
type RangeSummary struct {
	OrganizationID    string  `json:"organization_id"`
	From              string  `json:"from"`
	To                string  `json:"to"`
	WorkingDays       int     `json:"working_days"`
	TotalHours        float64 `json:"total_hours"`
	AverageDailyHours float64 `json:"average_daily_hours"`
	AverageAttendance float64 `json:"average_attendance_rate"`
}
