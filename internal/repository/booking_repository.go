package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/bookwise/service-booking/internal/domain/booking"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey"`
	AppointmentDate time.Time     `gorm:"column:appt_date;not null"`
	UserID          uuid.UUID     `gorm:"type:uuid;index;not null"`
	CompanyID       uuid.UUID     `gorm:"type:uuid;index;not null"`
	Notes           string        `gorm:"size:500"`
	Company         *CompanyModel `gorm:"foreignKey:CompanyID"`
	CreatedAt       time.Time     `gorm:"not null"`
	UpdatedAt       time.Time     `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// preloadCompanySummary loads only the company columns a booking embeds.
func preloadCompanySummary(db *gorm.DB) *gorm.DB {
	return db.Preload("Company", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "address", "telephone", "description")
	})
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := preloadCompanySummary(r.db.WithContext(ctx)).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// Find lists bookings matching filter, newest first.
func (r *GormBookingRepository) Find(ctx context.Context, filter bookingDomain.Filter) ([]*bookingDomain.Booking, error) {
	q := preloadCompanySummary(r.db.WithContext(ctx))
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}

	var models []BookingModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings, nil
}

// CreateWithQuota inserts bk in a transaction that first takes a per-user
// advisory lock, so concurrent creates for one user see each other's rows.
func (r *GormBookingRepository) CreateWithQuota(ctx context.Context, bk *bookingDomain.Booking, limit int) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit > 0 {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", bk.UserID().String()).Error; err != nil {
				return fmt.Errorf("failed to lock user bookings: %w", err)
			}

			var count int64
			if err := tx.Model(&BookingModel{}).Where("user_id = ?", bk.UserID()).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count user bookings: %w", err)
			}
			if bookingDomain.HasReachedQuota(count, limit) {
				return domain.NewQuotaExceededError(fmt.Sprintf(
					"The user with ID %s has already made %d bookings", bk.UserID(), count,
				))
			}
		}

		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
}

// Update persists appointment date and notes changes.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", bk.ID()).
		Updates(map[string]interface{}{
			"appt_date":  bk.AppointmentDate(),
			"notes":      bk.Notes(),
			"updated_at": bk.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	return nil
}

// Delete removes a booking by id.
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("booking", id.String())
	}
	return nil
}

// DeleteByCompanyID removes every booking for a company.
func (r *GormBookingRepository) DeleteByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("company_id = ?", companyID).Delete(&BookingModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete company bookings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByUserID removes every booking for a user.
func (r *GormBookingRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&BookingModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete user bookings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountByCompany returns booking counts grouped by company (admin).
func (r *GormBookingRepository) CountByCompany(ctx context.Context) ([]bookingDomain.CompanyCount, error) {
	type companyCount struct {
		CompanyID   uuid.UUID
		CompanyName string
		Count       int64
	}
	var results []companyCount
	if err := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("b.company_id AS company_id, c.name AS company_name, count(*) AS count").
		Joins("JOIN companies AS c ON c.id = b.company_id").
		Group("b.company_id, c.name").
		Order("count DESC").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by company: %w", err)
	}

	counts := make([]bookingDomain.CompanyCount, len(results))
	for i, cc := range results {
		counts[i] = bookingDomain.CompanyCount{
			CompanyID:   cc.CompanyID,
			CompanyName: cc.CompanyName,
			Count:       cc.Count,
		}
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
		AppointmentDate: bk.AppointmentDate(),
		UserID:          bk.UserID(),
		CompanyID:       bk.CompanyID(),
		Notes:           bk.Notes(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	var summary *bookingDomain.CompanySummary
	if m.Company != nil {
		summary = &bookingDomain.CompanySummary{
			ID:          m.Company.ID,
			Name:        m.Company.Name,
			Address:     m.Company.Address,
			Telephone:   m.Company.Telephone,
			Description: m.Company.Description,
		}
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.AppointmentDate.UTC(),
		m.UserID,
		m.CompanyID,
		m.Notes,
		summary,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
