package application

import (
	"context"
	"fmt"
	"time"

	bookingDomain "github.com/bookwise/service-booking/internal/domain/booking"
	companyDomain "github.com/bookwise/service-booking/internal/domain/company"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/bookwise/service-booking/pkg/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	AppointmentDate string `json:"appt_date" binding:"required"`
	Notes           string `json:"notes"`
}

// UpdateBookingRequest holds the mutable fields of a booking. Nil fields are unchanged.
type UpdateBookingRequest struct {
	AppointmentDate *string `json:"appt_date"`
	Notes           *string `json:"notes"`
}

// CompanyRefDTO is the company projection embedded in a booking.
type CompanyRefDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	Telephone   string    `json:"tel,omitempty"`
	Description string    `json:"description,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID      `json:"id"`
	AppointmentDate time.Time      `json:"appt_date"`
	UserID          uuid.UUID      `json:"user_id"`
	CompanyID       uuid.UUID      `json:"company_id"`
	Notes           string         `json:"notes,omitempty"`
	Company         *CompanyRefDTO `json:"company,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CompanyBookingCountDTO is one row of the per-company statistics.
type CompanyBookingCountDTO struct {
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Count       int64     `json:"count"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64                    `json:"total_bookings"`
	ByCompany     []CompanyBookingCountDTO `json:"by_company"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	companies companyDomain.CompanyRepository
	window    bookingDomain.Window
	quota     int
	producer  EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. quota <= 0 disables the
// per-user limit.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	companies companyDomain.CompanyRepository,
	window bookingDomain.Window,
	quota int,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		companies: companies,
		window:    window,
		quota:     quota,
		producer:  producer,
		logger:    logger,
	}
}

// ListBookings returns the actor's own bookings, or every booking for an
// admin. A non-nil companyID scopes the listing to that company.
func (s *BookingService) ListBookings(ctx context.Context, actor bookingDomain.Actor, companyID *uuid.UUID) ([]BookingDTO, error) {
	if companyID != nil {
		if err := s.requireCompany(ctx, *companyID); err != nil {
			return nil, err
		}
	}

	filter := bookingDomain.Filter{CompanyID: companyID}
	if !actor.IsAdmin() {
		userID := actor.UserID
		filter.UserID = &userID
	}

	bookings, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, domain.Classify(err, "failed to list bookings")
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk, listCompanyRef)
	}
	return dtos, nil
}

// GetBooking retrieves a single booking the actor owns (or any, for an admin).
func (s *BookingService) GetBooking(ctx context.Context, actor bookingDomain.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.authorizedBooking(ctx, actor, bookingID, "view")
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, detailCompanyRef)
	return &result, nil
}

// CreateBooking books the actor into companyID. Checks run in a fixed order:
// company exists, date is valid, quota is not reached.
func (s *BookingService) CreateBooking(ctx context.Context, actor bookingDomain.Actor, companyID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if err := s.requireCompany(ctx, companyID); err != nil {
		return nil, err
	}

	appt, err := bookingDomain.ParseAppointmentDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.ValidateBookingDate(s.window, appt); err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(actor.UserID, companyID, appt, req.Notes)
	if err != nil {
		return nil, err
	}

	limit := s.quota
	if actor.IsAdmin() {
		limit = 0
	}
	if err := s.repo.CreateWithQuota(ctx, bk, limit); err != nil {
		return nil, domain.Classify(err, "failed to create booking")
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID().String()),
		zap.String("company_id", companyID.String()),
	)

	evt := events.BookingCreatedEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		CompanyID:       bk.CompanyID(),
		AppointmentDate: bk.AppointmentDate(),
		OccurredAt:      time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)

	result := toBookingDTO(bk, detailCompanyRef)
	return &result, nil
}

// UpdateBooking changes the date and/or notes of a booking.
func (s *BookingService) UpdateBooking(ctx context.Context, actor bookingDomain.Actor, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.authorizedBooking(ctx, actor, bookingID, "update")
	if err != nil {
		return nil, err
	}

	if req.AppointmentDate != nil {
		appt, err := bookingDomain.ParseAppointmentDate(*req.AppointmentDate)
		if err != nil {
			return nil, err
		}
		if err := bk.Reschedule(s.window, appt); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if err := bk.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, domain.Classify(err, "failed to update booking")
	}

	evt := events.BookingUpdatedEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		CompanyID:       bk.CompanyID(),
		AppointmentDate: bk.AppointmentDate(),
		UpdatedBy:       actor.UserID,
		OccurredAt:      time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingUpdated, bk.ID().String(), evt)

	result := toBookingDTO(bk, detailCompanyRef)
	return &result, nil
}

// DeleteBooking removes a booking the actor owns (or any, for an admin).
func (s *BookingService) DeleteBooking(ctx context.Context, actor bookingDomain.Actor, bookingID uuid.UUID) error {
	bk, err := s.authorizedBooking(ctx, actor, bookingID, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, bk.ID()); err != nil {
		return domain.Classify(err, "failed to delete booking")
	}

	s.logger.Info("booking deleted",
		zap.String("booking_id", bk.ID().String()),
		zap.String("deleted_by", actor.UserID.String()),
	)

	evt := events.BookingDeletedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		CompanyID:  bk.CompanyID(),
		DeletedBy:  actor.UserID,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingDeleted, bk.ID().String(), evt)
	return nil
}

// DeleteUserBookings removes every booking held by userID.
func (s *BookingService) DeleteUserBookings(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, domain.Classify(err, "failed to delete user bookings")
	}
	s.logger.Info("user bookings removed",
		zap.String("user_id", userID.String()),
		zap.Int64("count", n),
	)
	return n, nil
}

// --- Admin methods ---

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByCompany(ctx)
	if err != nil {
		return nil, domain.Classify(err, "failed to get booking stats")
	}

	stats := &BookingStatsDTO{ByCompany: make([]CompanyBookingCountDTO, len(counts))}
	for i, c := range counts {
		stats.TotalBookings += c.Count
		stats.ByCompany[i] = CompanyBookingCountDTO{
			CompanyID:   c.CompanyID,
			CompanyName: c.CompanyName,
			Count:       c.Count,
		}
	}
	return stats, nil
}

// --- Helpers ---

func (s *BookingService) requireCompany(ctx context.Context, companyID uuid.UUID) error {
	ok, err := s.companies.Exists(ctx, companyID)
	if err != nil {
		return domain.Classify(err, "failed to look up company")
	}
	if !ok {
		return domain.NewNotFoundError("company", companyID.String())
	}
	return nil
}

// authorizedBooking loads a booking and checks the actor may act on it.
func (s *BookingService) authorizedBooking(ctx context.Context, actor bookingDomain.Actor, bookingID uuid.UUID, action string) (*bookingDomain.Booking, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, domain.Classify(err, "failed to find booking")
	}
	if !bookingDomain.IsOwnerOrAdmin(bk, actor) {
		return nil, domain.NewForbiddenError(fmt.Sprintf("User %s is not authorized to %s this booking", actor.UserID, action))
	}
	return bk, nil
}

type companyRefProjection func(*bookingDomain.CompanySummary) *CompanyRefDTO

// listCompanyRef embeds name, address and telephone.
func listCompanyRef(c *bookingDomain.CompanySummary) *CompanyRefDTO {
	return &CompanyRefDTO{ID: c.ID, Name: c.Name, Address: c.Address, Telephone: c.Telephone}
}

// detailCompanyRef embeds name, description and telephone.
func detailCompanyRef(c *bookingDomain.CompanySummary) *CompanyRefDTO {
	return &CompanyRefDTO{ID: c.ID, Name: c.Name, Description: c.Description, Telephone: c.Telephone}
}

func toBookingDTO(bk *bookingDomain.Booking, project companyRefProjection) BookingDTO {
	dto := BookingDTO{
		ID:              bk.ID(),
		AppointmentDate: bk.AppointmentDate(),
		UserID:          bk.UserID(),
		CompanyID:       bk.CompanyID(),
		Notes:           bk.Notes(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
	if c := bk.Company(); c != nil && project != nil {
		dto.Company = project(c)
	}
	return dto
}
