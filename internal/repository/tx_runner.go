package repository

import (
	"context"

	bookingDomain "github.com/bookwise/service-booking/internal/domain/booking"
	companyDomain "github.com/bookwise/service-booking/internal/domain/company"
	"gorm.io/gorm"
)

// TxRunner runs callbacks inside one database transaction.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner creates a TxRunner.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run starts a transaction, hands fn repositories bound to it, and commits
// when fn returns nil. Any error rolls everything back.
func (r *TxRunner) Run(ctx context.Context, fn func(
	companies companyDomain.CompanyRepository,
	bookings bookingDomain.BookingRepository,
) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormCompanyRepository(tx), NewGormBookingRepository(tx))
	})
}
