// Package response writes the uniform JSON envelope used by every endpoint:
// {"success": bool, "data"|"msg", "count"?, "total"?, "pagination"?}.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/service-booking/pkg/domain"
)

// Body is the standard API response envelope.
type Body struct {
	Success    bool        `json:"success"`
	Count      *int        `json:"count,omitempty"`
	Total      *int64      `json:"total,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Msg        string      `json:"msg,omitempty"`
}

// Success sends 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// List sends 200 with a collection, its count and optional pagination.
func List(c *gin.Context, data interface{}, count int, pagination interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Count: &count, Pagination: pagination, Data: data})
}

// Paginated sends 200 with one page of a collection, the page length, the
// total number of matches and the neighbouring pages.
func Paginated(c *gin.Context, data interface{}, count int, total int64, pagination interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Count: &count, Total: &total, Pagination: pagination, Data: data})
}

// Deleted sends 200 with an empty data object.
func Deleted(c *gin.Context) {
	c.JSON(http.StatusOK, Body{Success: true, Data: gin.H{}})
}

// BadRequest sends 400.
func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, msg)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) {
	Fail(c, http.StatusUnauthorized, msg)
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, msg string) {
	Fail(c, http.StatusForbidden, msg)
}

// Fail sends a failure envelope with the given status.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{Success: false, Msg: msg})
}

// Error maps err onto a status code. Wrapped causes never reach the client.
func Error(c *gin.Context, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if de.Err != nil {
		_ = c.Error(de.Err)
	}
	Fail(c, StatusFor(de.Kind), de.Message)
}

// StatusFor returns the HTTP status for a domain error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindQuotaExceeded:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
