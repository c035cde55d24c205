package company

import (
	"context"

	"github.com/bookwise/service-booking/internal/query"
	"github.com/google/uuid"
)

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	// FindByID retrieves a company with its bookings attached.
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// Exists reports whether a company id resolves.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List applies plan and returns one page of companies with bookings
	// attached, plus the total number of matching rows.
	List(ctx context.Context, plan *query.Plan) ([]*Company, int64, error)

	Save(ctx context.Context, company *Company) error
	Update(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}
