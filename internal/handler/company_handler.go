package handler

import (
	"github.com/bookwise/service-booking/internal/application"
	"github.com/bookwise/service-booking/pkg/auth"
	"github.com/bookwise/service-booking/pkg/middleware"
	"github.com/bookwise/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyHandler handles HTTP requests for company operations.
type CompanyHandler struct {
	service *application.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(service *application.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// RegisterRoutes registers company routes. Reads are public; writes are admin-only.
func (h *CompanyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	companies := r.Group("/api/v1/companies")
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompany)
		companies.POST("", authMW, adminRole, h.CreateCompany)
		companies.PUT("/:id", authMW, adminRole, h.UpdateCompany)
		companies.DELETE("/:id", authMW, adminRole, h.DeleteCompany)
	}
}

// ListCompanies handles GET /api/v1/companies.
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	result, err := h.service.ListCompanies(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, len(result.Items), result.Total, result.Pagination)
}

// GetCompany handles GET /api/v1/companies/:id.
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company ID")
		return
	}

	result, err := h.service.GetCompany(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateCompany handles POST /api/v1/companies.
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req application.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCompany(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateCompany handles PUT /api/v1/companies/:id.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company ID")
		return
	}

	var req application.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCompany(c.Request.Context(), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteCompany handles DELETE /api/v1/companies/:id.
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company ID")
		return
	}

	if err := h.service.DeleteCompany(c.Request.Context(), companyID); err != nil {
		response.Error(c, err)
		return
	}

	response.Deleted(c)
}
