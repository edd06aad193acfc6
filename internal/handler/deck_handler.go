package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/pkg/response"
)

// DeckHandler handles deck API requests
type DeckHandler struct {
	deckService  *service.DeckService
	statsService *service.StatsService
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(deckService *service.DeckService, statsService *service.StatsService) *DeckHandler {
	return &DeckHandler{
		deckService:  deckService,
		statsService: statsService,
	}
}

// RegisterRoutes registers deck routes
func (h *DeckHandler) RegisterRoutes(rg *gin.RouterGroup) {
	decks := rg.Group("/decks")
	{
		decks.POST("", h.CreateDeck)
		decks.GET("", h.ListDecks)
		decks.GET("/by-format/:format", h.ListDecksByFormat)
		decks.GET("/by-date", h.ListDecksByDate)
		decks.GET("/search", h.SearchDecks)
		decks.GET("/count", h.CountDecks)
		decks.GET("/stats/by-format", h.StatsByFormat)
		decks.GET("/:id", h.GetDeck)
		decks.PUT("/:id", h.UpdateDeck)
		decks.DELETE("/:id", h.DeleteDeck)
		decks.GET("/:id/cards", h.ListDeckCards)
		decks.POST("/:id/add_cards", h.AddCards)
		decks.POST("/:id/remove_card/:card_id", h.RemoveCard)
	}
}

// CreateDeck handles deck creation
// POST /api/v1/decks
func (h *DeckHandler) CreateDeck(c *gin.Context) {
	var req service.CreateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deck, err := h.deckService.CreateDeck(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, deck)
}

// ListDecks handles listing decks, newest first
// GET /api/v1/decks
func (h *DeckHandler) ListDecks(c *gin.Context) {
	page, pageSize := parsePagination(c)

	decks, total, err := h.deckService.ListDecks(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, decks, total, page, pageSize)
}

// ListDecksByFormat handles listing decks of one format
// GET /api/v1/decks/by-format/:format
func (h *DeckHandler) ListDecksByFormat(c *gin.Context) {
	page, pageSize := parsePagination(c)
	format := models.DeckFormat(c.Param("format"))

	decks, total, err := h.deckService.ListDecksByFormat(c.Request.Context(), format, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, decks, total, page, pageSize)
}

// ListDecksByDate handles listing decks created within [start, end]
// GET /api/v1/decks/by-date?start=&end=
func (h *DeckHandler) ListDecksByDate(c *gin.Context) {
	start, err := parseBound(c.Query("start"), false)
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid start: %v", err))
		return
	}
	end, err := parseBound(c.Query("end"), true)
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid end: %v", err))
		return
	}
	page, pageSize := parsePagination(c)

	decks, total, err := h.deckService.ListDecksByDate(c.Request.Context(), service.DeckDateRange{Start: start, End: end}, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, decks, total, page, pageSize)
}

// parseBound accepts RFC3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day.
func parseBound(value string, upper bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", value)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// SearchDecks handles case-insensitive name search
// GET /api/v1/decks/search?query=
func (h *DeckHandler) SearchDecks(c *gin.Context) {
	page, pageSize := parsePagination(c)

	decks, total, err := h.deckService.SearchDecks(c.Request.Context(), c.Query("query"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, decks, total, page, pageSize)
}

// CountDecks handles counting decks
// GET /api/v1/decks/count
func (h *DeckHandler) CountDecks(c *gin.Context) {
	total, err := h.deckService.CountDecks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, countResponse{Total: total})
}

// StatsByFormat handles the global decks-by-format report
// GET /api/v1/decks/stats/by-format
func (h *DeckHandler) StatsByFormat(c *gin.Context) {
	counts, err := h.statsService.DecksByFormat(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, counts)
}

// GetDeck handles getting a single deck
// GET /api/v1/decks/:id
func (h *DeckHandler) GetDeck(c *gin.Context) {
	deck, err := h.deckService.GetDeck(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, deck)
}

// UpdateDeck handles partial deck updates
// PUT /api/v1/decks/:id
func (h *DeckHandler) UpdateDeck(c *gin.Context) {
	var req service.UpdateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deck, err := h.deckService.UpdateDeck(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, deck)
}

// DeleteDeck handles deck deletion
// DELETE /api/v1/decks/:id
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	if err := h.deckService.DeleteDeck(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ListDeckCards handles listing the resolved cards of a deck
// GET /api/v1/decks/:id/cards
func (h *DeckHandler) ListDeckCards(c *gin.Context) {
	page, pageSize := parsePagination(c)

	cards, total, err := h.deckService.ListDeckCards(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, cards, total, page, pageSize)
}

// AddCards handles appending a batch of cards to a deck
// POST /api/v1/decks/:id/add_cards
func (h *DeckHandler) AddCards(c *gin.Context) {
	var req service.AddCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deck, err := h.deckService.AddCardsToDeck(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, deck)
}

// RemoveCard handles removing one card from a deck
// POST /api/v1/decks/:id/remove_card/:card_id
func (h *DeckHandler) RemoveCard(c *gin.Context) {
	deck, err := h.deckService.RemoveCardFromDeck(c.Request.Context(), c.Param("id"), c.Param("card_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, deck)
}
