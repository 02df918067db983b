// Package testutil provides in-memory fakes for the engine's boundary
// contracts so service tests run without a database or broker.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/organization"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/roster"
)

// AttendanceRepo is an in-memory attendance.Repository.
type AttendanceRepo struct {
	mu      sync.Mutex
	records []attendance.Record

	// Err, when set, is returned by every method.
	Err error
	// BulkErr, when set, fails only BulkCreate.
	BulkErr error
	// ErrForOrg forces a failure for a single organization's day queries.
	ErrForOrg map[string]error
}

func NewAttendanceRepo() *AttendanceRepo {
	return &AttendanceRepo{ErrForOrg: map[string]error{}}
}

// Seed inserts a record directly, bypassing the state machine.
func (r *AttendanceRepo) Seed(rec attendance.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *AttendanceRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if r.Err != nil {
		return attendance.Record{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.CreatedAt = time.Now().UTC()
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *AttendanceRepo) Update(ctx context.Context, rec attendance.Record) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == rec.ID {
			r.records[i] = rec
			return nil
		}
	}
	return attendance.ErrRecordNotFound
}

func (r *AttendanceRepo) FindOpenShift(ctx context.Context, userID, day string) (attendance.Record, error) {
	if r.Err != nil {
		return attendance.Record{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Day == day && rec.Status != attendance.StatusCompleted {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (r *AttendanceRepo) FindShiftsByDay(ctx context.Context, orgID, day string) ([]attendance.Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if err := r.ErrForOrg[orgID]; err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.OrganizationID == orgID && rec.Day == day {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *AttendanceRepo) FindOpenShiftsByDay(ctx context.Context, orgID, day string) ([]attendance.Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if err := r.ErrForOrg[orgID]; err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.OrganizationID == orgID && rec.Day == day && rec.CheckOutAt == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *AttendanceRepo) BulkCreate(ctx context.Context, recs []attendance.Record) error {
	if r.Err != nil {
		return r.Err
	}
	if r.BulkErr != nil {
		return r.BulkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recs...)
	return nil
}

// Get returns a stored record by ID.
func (r *AttendanceRepo) Get(id string) (attendance.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return attendance.Record{}, false
}

// OrgRepo is a fixed-list organization.Repository.
type OrgRepo struct {
	Orgs []organization.Organization
	Err  error
}

func (r *OrgRepo) ListActive(ctx context.Context) ([]organization.Organization, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Orgs, nil
}

// WorkingHoursStub is a function-backed organization.WorkingHoursProvider.
type WorkingHoursStub struct {
	InfoFn func(orgID string, date time.Time) (organization.WorkingDayInfo, error)
	LateFn func(orgID string, checkInAt time.Time) (organization.Lateness, error)
}

func (s *WorkingHoursStub) GetWorkingDayInfo(ctx context.Context, orgID string, date time.Time) (organization.WorkingDayInfo, error) {
	return s.InfoFn(orgID, date)
}

func (s *WorkingHoursStub) IsUserLate(ctx context.Context, orgID string, checkInAt time.Time) (organization.Lateness, error) {
	if s.LateFn != nil {
		return s.LateFn(orgID, checkInAt)
	}
	return organization.Lateness{}, nil
}

// RosterStub maps organization IDs to fixed rosters.
type RosterStub struct {
	Users map[string][]roster.User
	Err   error
}

func (s *RosterStub) ListActiveUsers(ctx context.Context, orgID string) ([]roster.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Users[orgID], nil
}

// TargetStub maps user IDs to daily hour targets; unmapped users get the
// default.
type TargetStub struct {
	Targets map[string]float64
}

func (s *TargetStub) GetUserTarget(ctx context.Context, userID string) (roster.Target, error) {
	if hours, ok := s.Targets[userID]; ok {
		return roster.Target{HoursWorked: hours}, nil
	}
	return roster.Target{HoursWorked: roster.DefaultTargetHours}, nil
}

// CapturedEvent is one Emit call recorded by CaptureSink.
type CapturedEvent struct {
	Kind    notification.EventKind
	Payload any
}

// CaptureSink records emitted events for assertions.
type CaptureSink struct {
	mu     sync.Mutex
	Events []CapturedEvent
	Err    error
}

func (s *CaptureSink) Emit(ctx context.Context, kind notification.EventKind, payload any) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, CapturedEvent{Kind: kind, Payload: payload})
	return nil
}

// ByKind returns the captured events of one kind.
func (s *CaptureSink) ByKind(kind notification.EventKind) []CapturedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CapturedEvent
	for _, e := range s.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
