package organization

// Organization is a tenant with its own working-hours configuration. The
// engine resolves overtime and report windows per organization in its
// configured time zone.
type Organization struct {
	ID       string
	Name     string
	Timezone string
}

// WorkingDayInfo is the resolved calendar entry for one organization on one
// date. Holiday and weekday resolution happens in the provider; the engine
// only consumes the resolved value.
type WorkingDayInfo struct {
	IsWorkingDay        bool
	StartTime           string // "HH:MM"
	EndTime             string // "HH:MM"
	ExpectedWorkMinutes int
}

// Lateness is the provider's verdict for a single check-in.
type Lateness struct {
	IsLate      bool
	LateMinutes int
}
