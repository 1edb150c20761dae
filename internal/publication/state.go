// Package publication implements the draft/published/scheduled lifecycle shared by
// every content table, plus the sweeper that promotes due scheduled records.
package publication

import (
	"strings"
	"time"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Machine applies status transitions using a default zone for date+time schedules
type Machine struct {
	loc *time.Location
	now func() time.Time
}

// NewMachine nil loc means UTC
func NewMachine(loc *time.Location) *Machine {
	if loc == nil {
		loc = time.UTC
	}
	return &Machine{loc: loc, now: time.Now}
}

// WithClock replaces time.Now
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Location default schedule zone
func (m *Machine) Location() *time.Location {
	return m.loc
}

// Apply moves base to target and records the transition
func (m *Machine) Apply(ct domain.ContentType, base *domain.ContentBase, target domain.Status, in domain.ScheduleInput) error {
	if err := Transition(ct, base, target, in, m.loc, m.now()); err != nil {
		return err
	}
	transitionsTotal.WithLabelValues(string(ct), string(target)).Inc()
	return nil
}

// Transition sets base.Status to target.
//
//	* -> draft      always, clears scheduled_at
//	* -> published  always, clears scheduled_at
//	* -> scheduled  blog only, needs a schedule strictly after now
//
// base is left untouched when an error is returned.
func Transition(ct domain.ContentType, base *domain.ContentBase, target domain.Status, in domain.ScheduleInput, defaultLoc *time.Location, now time.Time) error {
	if !ct.Allows(target) {
		return common.NewValidationError("status", "%q is not a valid status for %s", target, ct.Table())
	}

	switch target {
	case domain.StatusDraft, domain.StatusPublished:
		base.Status = target
		base.ScheduledAt = nil
		return nil
	}

	if in.IsZero() {
		return common.NewValidationError("scheduled_at", "required when status is scheduled")
	}
	at, err := ResolveSchedule(in, defaultLoc)
	if err != nil {
		return err
	}
	if !at.After(now) {
		return common.NewValidationError("scheduled_at", "must be in the future")
	}

	base.Status = domain.StatusScheduled
	base.ScheduledAt = &at
	return nil
}

// ResolveSchedule returns the absolute publish time in UTC. An explicit
// scheduled_at wins; otherwise date and time are read in the request zone,
// falling back to defaultLoc.
func ResolveSchedule(in domain.ScheduleInput, defaultLoc *time.Location) (time.Time, error) {
	if in.ScheduledAt != nil {
		return in.ScheduledAt.UTC(), nil
	}

	date := strings.TrimSpace(in.ScheduledDate)
	clock := strings.TrimSpace(in.ScheduledTime)
	if date == "" || clock == "" {
		return time.Time{}, common.NewValidationError("scheduled_date", "scheduled_date and scheduled_time must both be set")
	}

	loc := defaultLoc
	if loc == nil {
		loc = time.UTC
	}
	if in.TimeZone != "" {
		l, err := time.LoadLocation(in.TimeZone)
		if err != nil {
			return time.Time{}, common.NewValidationError("time_zone", "unknown time zone %q", in.TimeZone)
		}
		loc = l
	}

	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		t, err = time.ParseInLocation(dateLayout+" "+timeLayout+":05", date+" "+clock, loc)
	}
	if err != nil {
		return time.Time{}, common.NewValidationError("scheduled_time", "expected %s and %s", dateLayout, timeLayout)
	}
	return t.UTC(), nil
}

// Check status and scheduled_at must agree: scheduled iff scheduled_at is set
func Check(table string, base *domain.ContentBase) error {
	scheduled := base.Status == domain.StatusScheduled
	if scheduled != (base.ScheduledAt != nil) {
		inconsistentTotal.WithLabelValues(table).Inc()
		return &common.InconsistentStateError{
			Table:       table,
			ID:          base.ID,
			Status:      string(base.Status),
			ScheduledAt: base.ScheduledAt,
		}
	}
	return nil
}
