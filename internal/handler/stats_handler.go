package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tcg-catalog/internal/service"
	"github.com/tcg-catalog/pkg/response"
)

// StatsHandler serves the combined reports and the integrity audit
type StatsHandler struct {
	statsService     *service.StatsService
	integrityService *service.IntegrityService
}

func NewStatsHandler(statsService *service.StatsService, integrityService *service.IntegrityService) *StatsHandler {
	return &StatsHandler{
		statsService:     statsService,
		integrityService: integrityService,
	}
}

// RegisterRoutes registers stats and integrity routes
func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats/overview", h.Overview)
	rg.GET("/integrity/report", h.IntegrityReport)
}

// Overview handles all reports at once
// GET /api/v1/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, overview)
}

// IntegrityReport handles the dangling-reference audit
// GET /api/v1/integrity/report
func (h *StatsHandler) IntegrityReport(c *gin.Context) {
	report, err := h.integrityService.Audit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, report)
}
