// Package events defines the topics, event types and payloads exchanged on Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicCompanyEvents = "company.events"
	TopicUserEvents    = "user.events"
)

// Event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"

	CompanyCreated = "company.created"
	CompanyUpdated = "company.updated"
	CompanyDeleted = "company.deleted"

	UserDeleted = "user.deleted"
)

// BookingCreatedEvent is published after a booking is persisted.
type BookingCreatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          uuid.UUID `json:"user_id"`
	CompanyID       uuid.UUID `json:"company_id"`
	AppointmentDate time.Time `json:"appt_date"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingUpdatedEvent is published after a booking's date or notes change.
type BookingUpdatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          uuid.UUID `json:"user_id"`
	CompanyID       uuid.UUID `json:"company_id"`
	AppointmentDate time.Time `json:"appt_date"`
	UpdatedBy       uuid.UUID `json:"updated_by"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingDeletedEvent is published after a booking is removed by request.
type BookingDeletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	CompanyID  uuid.UUID `json:"company_id"`
	DeletedBy  uuid.UUID `json:"deleted_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CompanyEvent is published on company create and update.
type CompanyEvent struct {
	CompanyID  uuid.UUID `json:"company_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CompanyDeletedEvent is published after a company and its bookings are removed.
type CompanyDeletedEvent struct {
	CompanyID       uuid.UUID `json:"company_id"`
	BookingsRemoved int64     `json:"bookings_removed"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// UserDeletedEvent is consumed from the user service.
type UserDeletedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
