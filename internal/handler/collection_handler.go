package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/pkg/response"
)

// CollectionHandler handles collection API requests
type CollectionHandler struct {
	collectionService *service.CollectionService
	statsService      *service.StatsService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService *service.CollectionService, statsService *service.StatsService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		statsService:      statsService,
	}
}

// RegisterRoutes registers collection routes
func (h *CollectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	collections := rg.Group("/collections")
	{
		collections.POST("", h.CreateCollection)
		collections.GET("", h.ListCollections)
		collections.GET("/search", h.SearchCollections)
		collections.GET("/count", h.CountCollections)
		collections.GET("/filter/by-year", h.FilterByYear)
		collections.GET("/stats/by-year", h.StatsByYear)
		collections.GET("/stats/with-cards", h.StatsWithCards)
		collections.GET("/:id", h.GetCollection)
		collections.PUT("/:id", h.UpdateCollection)
		collections.DELETE("/:id", h.DeleteCollection)
		collections.GET("/:id/cards", h.ListCollectionCards)
	}
}

// CreateCollection handles collection creation
// POST /api/v1/collections
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	var req service.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collection, err := h.collectionService.CreateCollection(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, collection)
}

// ListCollections handles listing collections
// GET /api/v1/collections
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	page, pageSize := parsePagination(c)

	collections, total, err := h.collectionService.ListCollections(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, collections, total, page, pageSize)
}

// SearchCollections handles case-insensitive name search
// GET /api/v1/collections/search?query=
func (h *CollectionHandler) SearchCollections(c *gin.Context) {
	page, pageSize := parsePagination(c)

	collections, total, err := h.collectionService.SearchCollections(c.Request.Context(), c.Query("query"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, collections, total, page, pageSize)
}

// CountCollections handles counting collections
// GET /api/v1/collections/count
func (h *CollectionHandler) CountCollections(c *gin.Context) {
	total, err := h.collectionService.CountCollections(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, countResponse{Total: total})
}

// FilterByYear handles listing collections released in a year
// GET /api/v1/collections/filter/by-year?year=
func (h *CollectionHandler) FilterByYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		response.BadRequest(c, "year must be an integer")
		return
	}
	page, pageSize := parsePagination(c)

	collections, total, err := h.collectionService.CollectionsByYear(c.Request.Context(), year, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, collections, total, page, pageSize)
}

// StatsByYear handles the collections-per-year report
// GET /api/v1/collections/stats/by-year
func (h *CollectionHandler) StatsByYear(c *gin.Context) {
	rows, err := h.statsService.CollectionsByYear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, rows)
}

// StatsWithCards handles the collections-with-card-count report
// GET /api/v1/collections/stats/with-cards
func (h *CollectionHandler) StatsWithCards(c *gin.Context) {
	rows, err := h.statsService.CollectionsWithCardCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, rows)
}

// GetCollection handles getting a single collection
// GET /api/v1/collections/:id
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	collection, err := h.collectionService.GetCollection(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, collection)
}

// UpdateCollection handles partial collection updates
// PUT /api/v1/collections/:id
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	var req service.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collection, err := h.collectionService.UpdateCollection(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, collection)
}

// DeleteCollection handles collection deletion
// DELETE /api/v1/collections/:id
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	if err := h.collectionService.DeleteCollection(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ListCollectionCards handles listing the cards of a collection
// GET /api/v1/collections/:id/cards
func (h *CollectionHandler) ListCollectionCards(c *gin.Context) {
	page, pageSize := parsePagination(c)

	cards, total, err := h.collectionService.ListCollectionCards(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, cards, total, page, pageSize)
}
