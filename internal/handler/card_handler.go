package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/pkg/response"
)

// CardHandler handles card API requests
type CardHandler struct {
	cardService  *service.CardService
	statsService *service.StatsService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService *service.CardService, statsService *service.StatsService) *CardHandler {
	return &CardHandler{
		cardService:  cardService,
		statsService: statsService,
	}
}

// RegisterRoutes registers card routes
func (h *CardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cards := rg.Group("/cards")
	{
		cards.POST("", h.CreateCard)
		cards.GET("", h.ListCards)
		cards.GET("/search/:name", h.SearchCards)
		cards.GET("/suggest", h.SuggestCards)
		cards.GET("/collection/:collection_id", h.ListCardsByCollection)
		cards.GET("/stats/by-collection", h.StatsByCollection)
		cards.GET("/stats/by-rarity", h.StatsByRarity)
		cards.GET("/stats/by-type", h.StatsByType)
		cards.GET("/:id", h.GetCard)
		cards.PUT("/:id", h.UpdateCard)
		cards.DELETE("/:id", h.DeleteCard)
	}
}

// CreateCard handles card creation
// POST /api/v1/cards
func (h *CardHandler) CreateCard(c *gin.Context) {
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	card, err := h.cardService.CreateCard(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, card)
}

// ListCards handles listing cards
// GET /api/v1/cards
func (h *CardHandler) ListCards(c *gin.Context) {
	page, pageSize := parsePagination(c)

	cards, total, err := h.cardService.ListCards(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, cards, total, page, pageSize)
}

// SearchCards handles case-insensitive name search
// GET /api/v1/cards/search/:name
func (h *CardHandler) SearchCards(c *gin.Context) {
	page, pageSize := parsePagination(c)

	cards, total, err := h.cardService.SearchCards(c.Request.Context(), c.Param("name"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, cards, total, page, pageSize)
}

// SuggestCards handles fuzzy name suggestions
// GET /api/v1/cards/suggest?q=&limit=
func (h *CardHandler) SuggestCards(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	suggestions, err := h.cardService.SuggestCards(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, suggestions)
}

// ListCardsByCollection handles listing the cards of a collection
// GET /api/v1/cards/collection/:collection_id
func (h *CardHandler) ListCardsByCollection(c *gin.Context) {
	page, pageSize := parsePagination(c)

	cards, total, err := h.cardService.ListCardsByCollection(c.Request.Context(), c.Param("collection_id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, cards, total, page, pageSize)
}

// StatsByCollection handles the cards-per-collection report
// GET /api/v1/cards/stats/by-collection
func (h *CardHandler) StatsByCollection(c *gin.Context) {
	rows, err := h.statsService.CardsPerCollection(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, rows)
}

// StatsByRarity handles the cards-by-rarity report
// GET /api/v1/cards/stats/by-rarity
func (h *CardHandler) StatsByRarity(c *gin.Context) {
	rows, err := h.statsService.CardsByRarity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, rows)
}

// StatsByType handles the cards-by-type report
// GET /api/v1/cards/stats/by-type
func (h *CardHandler) StatsByType(c *gin.Context) {
	rows, err := h.statsService.CardsByType(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, rows)
}

// GetCard handles getting a card with its collection
// GET /api/v1/cards/:id
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.cardService.GetCardDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, card)
}

// UpdateCard handles partial card updates
// PUT /api/v1/cards/:id
func (h *CardHandler) UpdateCard(c *gin.Context) {
	var req service.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	card, err := h.cardService.UpdateCard(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, card)
}

// DeleteCard handles card deletion
// DELETE /api/v1/cards/:id
func (h *CardHandler) DeleteCard(c *gin.Context) {
	if err := h.cardService.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}
