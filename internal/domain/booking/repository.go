package booking

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a booking listing. Nil fields are not applied.
type Filter struct {
	UserID    *uuid.UUID
	CompanyID *uuid.UUID
}

// CompanyCount is the number of bookings held against one company.
type CompanyCount struct {
	CompanyID   uuid.UUID
	CompanyName string
	Count       int64
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by id with its company projection attached.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Find lists bookings matching filter, newest first, with company projections.
	Find(ctx context.Context, filter Filter) ([]*Booking, error)

	// CreateWithQuota persists a new booking unless its owner already holds
	// limit bookings. The count and insert are atomic per user. A limit <= 0
	// skips the check.
	CreateWithQuota(ctx context.Context, booking *Booking, limit int) error

	// Update persists date and notes changes.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking by id.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByCompanyID removes every booking for a company and returns the count.
	DeleteByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)

	// DeleteByUserID removes every booking for a user and returns the count.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountByCompany returns booking counts grouped by company (admin).
	CountByCompany(ctx context.Context) ([]CompanyCount, error)
}
