package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/bookwise/service-booking/internal/domain/booking"
	companyDomain "github.com/bookwise/service-booking/internal/domain/company"
	"github.com/bookwise/service-booking/internal/query"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyFields is the allow-list of company fields exposed to listing queries.
var CompanyFields = query.FieldSet{
	"id":          {Column: "id"},
	"name":        {Column: "name"},
	"address":     {Column: "address"},
	"district":    {Column: "district"},
	"province":    {Column: "province"},
	"postalcode":  {Column: "postal_code"},
	"tel":         {Column: "telephone"},
	"website":     {Column: "website"},
	"description": {Column: "description"},
	"created_at":  {Column: "created_at", Type: query.TypeTime},
	"updated_at":  {Column: "updated_at", Type: query.TypeTime},
}

// CompanyModel is the GORM model for the companies table.
type CompanyModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"size:50;not null"`
	Address     string         `gorm:"not null"`
	District    string         `gorm:"not null"`
	Province    string         `gorm:"not null"`
	PostalCode  string         `gorm:"size:5;not null"`
	Telephone   string         `gorm:"not null"`
	Website     string         `gorm:"not null"`
	Description string         `gorm:"not null"`
	Bookings    []BookingModel `gorm:"foreignKey:CompanyID"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CompanyModel) TableName() string {
	return "companies"
}

// GormCompanyRepository is the GORM-based implementation of CompanyRepository.
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository.
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

func preloadBookings(db *gorm.DB) *gorm.DB {
	return db.Preload("Bookings", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})
}

// FindByID retrieves a company with its bookings.
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*companyDomain.Company, error) {
	var model CompanyModel
	if err := preloadBookings(r.db.WithContext(ctx)).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("company", id.String())
		}
		return nil, fmt.Errorf("failed to find company by ID: %w", err)
	}
	return toDomainCompany(&model), nil
}

// Exists reports whether a company id resolves.
func (r *GormCompanyRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CompanyModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check company: %w", err)
	}
	return count > 0, nil
}

// List applies plan and returns one page of companies and the total match count.
func (r *GormCompanyRepository) List(ctx context.Context, plan *query.Plan) ([]*companyDomain.Company, int64, error) {
	var total int64
	if err := applyConditions(r.db.WithContext(ctx).Model(&CompanyModel{}), plan.Conditions).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	q := applyConditions(preloadBookings(r.db.WithContext(ctx)), plan.Conditions)
	if cols := plan.SelectColumns(); cols != nil {
		q = q.Select(cols)
	}
	for _, s := range plan.Sort {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
	}

	var models []CompanyModel
	if err := q.Offset(plan.Offset()).Limit(plan.Limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}

	companies := make([]*companyDomain.Company, len(models))
	for i := range models {
		companies[i] = toDomainCompany(&models[i])
	}
	return companies, total, nil
}

// Save persists a new company.
func (r *GormCompanyRepository) Save(ctx context.Context, c *companyDomain.Company) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(toCompanyModel(c)).Error; err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

// Update persists changes to an existing company.
func (r *GormCompanyRepository) Update(ctx context.Context, c *companyDomain.Company) error {
	model := toCompanyModel(c)
	result := r.db.WithContext(ctx).
		Model(&CompanyModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"address":     model.Address,
			"district":    model.District,
			"province":    model.Province,
			"postal_code": model.PostalCode,
			"telephone":   model.Telephone,
			"website":     model.Website,
			"description": model.Description,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("company", model.ID.String())
	}
	return nil
}

// Delete removes a company. Bookings must already be gone.
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CompanyModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("company", id.String())
	}
	return nil
}

func applyConditions(db *gorm.DB, conds []query.Condition) *gorm.DB {
	for _, c := range conds {
		col := clause.Column{Name: c.Column}
		switch c.Operator {
		case query.OpEq:
			db = db.Where(clause.Eq{Column: col, Value: c.Values[0]})
		case query.OpGt:
			db = db.Where(clause.Gt{Column: col, Value: c.Values[0]})
		case query.OpGte:
			db = db.Where(clause.Gte{Column: col, Value: c.Values[0]})
		case query.OpLt:
			db = db.Where(clause.Lt{Column: col, Value: c.Values[0]})
		case query.OpLte:
			db = db.Where(clause.Lte{Column: col, Value: c.Values[0]})
		case query.OpIn:
			db = db.Where(clause.IN{Column: col, Values: c.Values})
		}
	}
	return db
}

// --- Conversion Helpers ---

func toCompanyModel(c *companyDomain.Company) *CompanyModel {
	return &CompanyModel{
		ID:          c.ID(),
		Name:        c.Name(),
		Address:     c.Address(),
		District:    c.District(),
		Province:    c.Province(),
		PostalCode:  c.PostalCode(),
		Telephone:   c.Telephone(),
		Website:     c.Website(),
		Description: c.Description(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func toDomainCompany(m *CompanyModel) *companyDomain.Company {
	c := companyDomain.Reconstruct(m.ID, companyDomain.Attributes{
		Name:        m.Name,
		Address:     m.Address,
		District:    m.District,
		Province:    m.Province,
		PostalCode:  m.PostalCode,
		Telephone:   m.Telephone,
		Website:     m.Website,
		Description: m.Description,
	}, m.CreatedAt, m.UpdatedAt)

	bookings := make([]*bookingDomain.Booking, len(m.Bookings))
	for i := range m.Bookings {
		bookings[i] = toDomainBooking(&m.Bookings[i])
	}
	c.AttachBookings(bookings)
	return c
}
