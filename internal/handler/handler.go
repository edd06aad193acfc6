package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tcg-catalog/internal/middleware"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/pkg/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads page and page_size query params
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrCardNotInDeck):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateDeckName),
		errors.Is(err, service.ErrDuplicateCardInDeck):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrEmptyUpdate), errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		middleware.LogError("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		response.ServiceUnavailable(c, service.ErrStoreUnavailable.Error())
	default:
		middleware.LogError("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		response.InternalError(c, "internal server error")
	}
}

type countResponse struct {
	Total int64 `json:"total"`
}
