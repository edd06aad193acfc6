package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tcg-catalog/internal/repository"
)

const healthPingTimeout = 2 * time.Second

// BuildInfo is injected at build time and reported by /health
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// HealthHandler reports liveness plus the state of the store and redis
type HealthHandler struct {
	store *repository.Store
	rdb   *redis.Client
	build BuildInfo
}

// NewHealthHandler creates a new HealthHandler. rdb may be nil when redis is disabled.
func NewHealthHandler(store *repository.Store, rdb *redis.Client, build BuildInfo) *HealthHandler {
	return &HealthHandler{
		store: store,
		rdb:   rdb,
		build: build,
	}
}

// RegisterRoutes registers the health route on the root router
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
}

// Health handles the health check
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	status := "ok"
	storeStatus := "ok"
	if err := h.store.Ping(ctx); err != nil {
		storeStatus = err.Error()
		status = "degraded"
	}

	redisStatus := "disabled"
	if h.rdb != nil {
		redisStatus = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			redisStatus = err.Error()
			status = "degraded"
		}
	}

	code := http.StatusOK
	if storeStatus != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"version":    h.build.Version,
		"commit":     h.build.Commit,
		"build_time": h.build.BuildTime,
		"time":       time.Now().Unix(),
		"store":      gin.H{"driver": h.store.Name(), "status": storeStatus},
		"redis":      redisStatus,
	})
}
