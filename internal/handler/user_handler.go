package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/pkg/response"
)

// UserHandler handles user API requests
type UserHandler struct {
	userService  *service.UserService
	deckService  *service.DeckService
	statsService *service.StatsService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService, deckService *service.DeckService, statsService *service.StatsService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		deckService:  deckService,
		statsService: statsService,
	}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.GET("/:id/decks", h.ListUserDecks)
		users.GET("/:id/decks/count", h.CountUserDecks)
		users.GET("/:id/decks/count-by-format", h.CountUserDecksByFormat)
	}
}

// CreateUser handles user registration
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, user)
}

// ListUsers handles listing users
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, users, total, page, pageSize)
}

// GetUser handles getting a single user
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// UpdateUser handles partial user updates
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ListUserDecks handles listing the decks of a user
// GET /api/v1/users/:id/decks
func (h *UserHandler) ListUserDecks(c *gin.Context) {
	page, pageSize := parsePagination(c)

	decks, total, err := h.deckService.ListUserDecks(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, decks, total, page, pageSize)
}

// CountUserDecks handles counting the decks of a user
// GET /api/v1/users/:id/decks/count
func (h *UserHandler) CountUserDecks(c *gin.Context) {
	total, err := h.deckService.CountUserDecks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, countResponse{Total: total})
}

// CountUserDecksByFormat handles the per-format deck count of a user
// GET /api/v1/users/:id/decks/count-by-format
func (h *UserHandler) CountUserDecksByFormat(c *gin.Context) {
	counts, err := h.statsService.UserDecksByFormat(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, counts)
}
