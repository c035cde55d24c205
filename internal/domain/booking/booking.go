package booking

import (
	"fmt"
	"time"

	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/google/uuid"
)

const maxNotesLength = 500

// CompanySummary is the read-time projection of the company a booking belongs to.
type CompanySummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name,omitempty"`
	Address     string    `json:"address,omitempty"`
	Telephone   string    `json:"tel,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Booking is the aggregate root for a user's reservation against a company.
type Booking struct {
	id              uuid.UUID
	appointmentDate time.Time
	userID          uuid.UUID
	companyID       uuid.UUID
	notes           string

	company *CompanySummary

	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a booking owned by userID against companyID.
// The date window and quota are checked by the caller before this point.
func NewBooking(userID, companyID uuid.UUID, appointmentDate time.Time, notes string) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if companyID == uuid.Nil {
		return nil, domain.NewValidationError("company ID is required")
	}
	if appointmentDate.IsZero() {
		return nil, domain.NewValidationError("appointment date is required")
	}
	if len(notes) > maxNotesLength {
		return nil, domain.NewValidationError(fmt.Sprintf("notes can not be more than %d characters", maxNotesLength))
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		appointmentDate: appointmentDate.UTC(),
		userID:          userID,
		companyID:       companyID,
		notes:           notes,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	appointmentDate time.Time,
	userID uuid.UUID,
	companyID uuid.UUID,
	notes string,
	company *CompanySummary,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		appointmentDate: appointmentDate,
		userID:          userID,
		companyID:       companyID,
		notes:           notes,
		company:         company,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// AppointmentDate returns the booked date.
func (b *Booking) AppointmentDate() time.Time { return b.appointmentDate }

// UserID returns the owning user's id.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// CompanyID returns the owning company's id.
func (b *Booking) CompanyID() uuid.UUID { return b.companyID }

// Notes returns free-form notes.
func (b *Booking) Notes() string { return b.notes }

// Company returns the populated company projection, or nil if not loaded.
func (b *Booking) Company() *CompanySummary { return b.company }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Reschedule moves the appointment, enforcing the allowed window.
func (b *Booking) Reschedule(window Window, date time.Time) error {
	if !IsValidBookingDate(window, date) {
		return window.violation()
	}
	b.appointmentDate = date.UTC()
	b.updatedAt = time.Now().UTC()
	return nil
}

// SetNotes replaces the notes.
func (b *Booking) SetNotes(notes string) error {
	if len(notes) > maxNotesLength {
		return domain.NewValidationError(fmt.Sprintf("notes can not be more than %d characters", maxNotesLength))
	}
	b.notes = notes
	b.updatedAt = time.Now().UTC()
	return nil
}
