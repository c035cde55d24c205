package application

import (
	"context"
	"net/url"
	"time"

	bookingDomain "github.com/bookwise/service-booking/internal/domain/booking"
	companyDomain "github.com/bookwise/service-booking/internal/domain/company"
	"github.com/bookwise/service-booking/internal/query"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/bookwise/service-booking/pkg/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxRunner runs fn with repositories bound to one transaction.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		companies companyDomain.CompanyRepository,
		bookings bookingDomain.BookingRepository,
	) error) error
}

// CreateCompanyRequest is the request DTO for creating a company.
type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	District    string `json:"district"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalcode"`
	Telephone   string `json:"tel"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// UpdateCompanyRequest is the request DTO for a partial company update.
type UpdateCompanyRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	District    *string `json:"district"`
	Province    *string `json:"province"`
	PostalCode  *string `json:"postalcode"`
	Telephone   *string `json:"tel"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}

// CompanyDTO is the API response representation of a company.
type CompanyDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	District    string       `json:"district"`
	Province    string       `json:"province"`
	PostalCode  string       `json:"postalcode"`
	Telephone   string       `json:"tel"`
	Website     string       `json:"website"`
	Description string       `json:"description"`
	Bookings    []BookingDTO `json:"bookings"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CompanyListResult is one page of a company listing. Items hold CompanyDTO
// values, or field maps when the request selected a projection.
type CompanyListResult struct {
	Items      []interface{}
	Total      int64
	Pagination query.Pagination
}

// CompanyService implements use cases for company management.
type CompanyService struct {
	repo     companyDomain.CompanyRepository
	tx       TxRunner
	fields   query.FieldSet
	producer EventPublisher
	logger   *zap.Logger
}

// NewCompanyService creates a new CompanyService. fields is the allow-list
// used to parse listing queries.
func NewCompanyService(
	repo companyDomain.CompanyRepository,
	tx TxRunner,
	fields query.FieldSet,
	producer EventPublisher,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		repo:     repo,
		tx:       tx,
		fields:   fields,
		producer: producer,
		logger:   logger,
	}
}

// ListCompanies filters, sorts and paginates companies from request parameters.
func (s *CompanyService) ListCompanies(ctx context.Context, params url.Values) (*CompanyListResult, error) {
	plan, err := query.Parse(params, s.fields)
	if err != nil {
		return nil, err
	}

	companies, total, err := s.repo.List(ctx, plan)
	if err != nil {
		return nil, domain.Classify(err, "failed to list companies")
	}

	items := make([]interface{}, len(companies))
	for i, c := range companies {
		dto := toCompanyDTO(c)
		if len(plan.Select) > 0 {
			items[i] = projectCompany(dto, plan.Select)
		} else {
			items[i] = dto
		}
	}

	return &CompanyListResult{
		Items:      items,
		Total:      total,
		Pagination: plan.Paginate(total),
	}, nil
}

// GetCompany retrieves a company with its bookings.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err, "failed to find company")
	}
	result := toCompanyDTO(c)
	return &result, nil
}

// CreateCompany validates and persists a new company.
func (s *CompanyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyDTO, error) {
	c, err := companyDomain.NewCompany(companyDomain.Attributes{
		Name:        req.Name,
		Address:     req.Address,
		District:    req.District,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
		Telephone:   req.Telephone,
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, domain.Classify(err, "failed to create company")
	}

	s.logger.Info("company created",
		zap.String("company_id", c.ID().String()),
		zap.String("name", c.Name()),
	)
	s.publish(ctx, events.CompanyCreated, c)

	result := toCompanyDTO(c)
	return &result, nil
}

// UpdateCompany applies a partial update and re-validates the company.
func (s *CompanyService) UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*CompanyDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err, "failed to find company")
	}

	if err := c.Apply(companyDomain.Patch{
		Name:        req.Name,
		Address:     req.Address,
		District:    req.District,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
		Telephone:   req.Telephone,
		Website:     req.Website,
		Description: req.Description,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, domain.Classify(err, "failed to update company")
	}

	s.logger.Info("company updated", zap.String("company_id", id.String()))
	s.publish(ctx, events.CompanyUpdated, c)

	result := toCompanyDTO(c)
	return &result, nil
}

// DeleteCompany removes a company and every booking that references it in
// one transaction.
func (s *CompanyService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	var removed int64
	err := s.tx.Run(ctx, func(companies companyDomain.CompanyRepository, bookings bookingDomain.BookingRepository) error {
		ok, err := companies.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("company", id.String())
		}

		n, err := bookings.DeleteByCompanyID(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return companies.Delete(ctx, id)
	})
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		s.logger.Error("company cascade delete failed", zap.String("company_id", id.String()), zap.Error(err))
		return domain.NewDependencyError("failed to delete company", err)
	}

	s.logger.Info("company deleted",
		zap.String("company_id", id.String()),
		zap.Int64("bookings_removed", removed),
	)

	evt := events.CompanyDeletedEvent{
		CompanyID:       id,
		BookingsRemoved: removed,
		OccurredAt:      time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicCompanyEvents, events.CompanyDeleted, id.String(), evt)
	return nil
}

// --- Helpers ---

func (s *CompanyService) publish(ctx context.Context, eventType string, c *companyDomain.Company) {
	evt := events.CompanyEvent{
		CompanyID:  c.ID(),
		Name:       c.Name(),
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicCompanyEvents, eventType, c.ID().String(), evt)
}

func toCompanyDTO(c *companyDomain.Company) CompanyDTO {
	bookings := make([]BookingDTO, len(c.Bookings()))
	for i, bk := range c.Bookings() {
		bookings[i] = toBookingDTO(bk, nil)
	}
	return CompanyDTO{
		ID:          c.ID(),
		Name:        c.Name(),
		Address:     c.Address(),
		District:    c.District(),
		Province:    c.Province(),
		PostalCode:  c.PostalCode(),
		Telephone:   c.Telephone(),
		Website:     c.Website(),
		Description: c.Description(),
		Bookings:    bookings,
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

// projectCompany keeps only the selected fields. Bookings are always attached.
func projectCompany(dto CompanyDTO, fields []string) map[string]interface{} {
	out := map[string]interface{}{"bookings": dto.Bookings}
	for _, f := range fields {
		switch f {
		case "id":
			out[f] = dto.ID
		case "name":
			out[f] = dto.Name
		case "address":
			out[f] = dto.Address
		case "district":
			out[f] = dto.District
		case "province":
			out[f] = dto.Province
		case "postalcode":
			out[f] = dto.PostalCode
		case "tel":
			out[f] = dto.Telephone
		case "website":
			out[f] = dto.Website
		case "description":
			out[f] = dto.Description
		case "created_at":
			out[f] = dto.CreatedAt
		case "updated_at":
			out[f] = dto.UpdatedAt
		}
	}
	return out
}
