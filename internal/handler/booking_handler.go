package handler

import (
	"github.com/bookwise/service-booking/internal/application"
	"github.com/bookwise/service-booking/internal/domain/booking"
	"github.com/bookwise/service-booking/pkg/auth"
	"github.com/bookwise/service-booking/pkg/domain"
	"github.com/bookwise/service-booking/pkg/middleware"
	"github.com/bookwise/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	anyRole := middleware.RequireRole(auth.RoleUser, auth.RoleAdmin)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW, anyRole)
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}

	companyBookings := r.Group("/api/v1/companies/:id/bookings")
	companyBookings.Use(authMW, anyRole)
	{
		companyBookings.GET("", h.ListCompanyBookings)
		companyBookings.POST("", h.CreateBooking)
	}
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, err := actorFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), actor, nil)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, result, len(result), nil)
}

// ListCompanyBookings handles GET /api/v1/companies/:id/bookings.
func (h *BookingHandler) ListCompanyBookings(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company ID")
		return
	}

	actor, err := actorFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), actor, &companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, result, len(result), nil)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, err := actorFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateBooking handles POST /api/v1/companies/:id/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company ID")
		return
	}

	actor, err := actorFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Please add an appointment date")
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateBooking handles PUT /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, err := actorFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), actor, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, err := actorFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), actor, bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Deleted(c)
}

// actorFrom builds the authorization context set by AuthMiddleware.
func actorFrom(c *gin.Context) (booking.Actor, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return booking.Actor{}, domain.NewUnauthorizedError("Not authorized to access this route")
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return booking.Actor{}, domain.NewUnauthorizedError("Not authorized to access this route")
	}
	return booking.Actor{UserID: userID, Role: role}, nil
}
