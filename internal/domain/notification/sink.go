package notification

import "context"

// EventKind identifies an outbound engine event.
type EventKind string

const (
	KindOvertimeReminder EventKind = "overtime_reminder"
	KindMorningReport    EventKind = "morning_report"
	KindEveningReport    EventKind = "evening_report"
)

// Sink emits engine events outward. Fire-and-forget: the engine only cares
// about emission, never awaits delivery confirmation. Recipients (OWNER,
// ADMIN, HR role holders) are resolved by the consumer, not here.
type Sink interface {
	Emit(ctx context.Context, kind EventKind, payload any) error
}

// OvertimeReminder is the payload for an overtime_reminder event.
type OvertimeReminder struct {
	RecordID        string `json:"record_id"`
	UserID          string `json:"user_id"`
	OrganizationID  string `json:"organization_id"`
	Day             string `json:"day"`
	OvertimeMinutes int    `json:"overtime_minutes"`
}
