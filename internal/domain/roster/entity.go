package roster

// User is one active roster member of an organization.
type User struct {
	ID     string
	Name   string
	Branch string
	Role   string
}

// Target is a user's expected daily working hours.
type Target struct {
	HoursWorked float64
}

// DefaultTargetHours applies when no explicit target is configured.
const DefaultTargetHours = 8.0
