package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/bookwise/service-booking/pkg/auth"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Window is the inclusive range of calendar days on which appointments may be booked.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a Window from two YYYY-MM-DD dates.
func NewWindow(start, end string) (Window, error) {
	s, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return Window{}, fmt.Errorf("invalid booking window start %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return Window{}, fmt.Errorf("invalid booking window end %q: %w", end, err)
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("booking window end %s is before start %s", end, start)
	}
	return Window{Start: s, End: e}, nil
}

// Contains reports whether t falls on a day inside the window, both ends inclusive.
// Days are compared in UTC.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := truncateDay(t)
	return !d.Before(truncateDay(w.Start)) && !d.After(truncateDay(w.End))
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

func (w Window) violation() error {
	return domain.NewValidationError(fmt.Sprintf(
		"Booking date must be between %s and %s",
		w.Start.Format("Jan 2, 2006"), w.End.Format("Jan 2, 2006"),
	))
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsValidBookingDate reports whether t is an allowed appointment date.
func IsValidBookingDate(w Window, t time.Time) bool {
	return w.Contains(t)
}

// ValidateBookingDate returns a validation error when t is outside w.
func ValidateBookingDate(w Window, t time.Time) error {
	if !IsValidBookingDate(w, t) {
		return w.violation()
	}
	return nil
}

// ParseAppointmentDate accepts a plain date or an RFC 3339 timestamp.
func ParseAppointmentDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.NewValidationError("Please add an appointment date")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.NewValidationError(fmt.Sprintf("malformed date %q", s))
}

// Actor is the identity and role making the current request.
type Actor struct {
	UserID uuid.UUID
	Role   auth.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == auth.RoleAdmin
}

// IsOwnerOrAdmin reports whether a may read or mutate b.
func IsOwnerOrAdmin(b *Booking, a Actor) bool {
	if b == nil || b.UserID() == uuid.Nil {
		return false
	}
	return a.IsAdmin() || b.UserID() == a.UserID
}

// HasReachedQuota reports whether a user holding count bookings may not book again.
// A non-positive limit disables the quota.
func HasReachedQuota(count int64, limit int) bool {
	return limit > 0 && count >= int64(limit)
}
