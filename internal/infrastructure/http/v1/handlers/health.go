package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tabula/internal/infrastructure/cache"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	cache cache.Backend
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(backend cache.Backend) *HealthHandler {
	return &HealthHandler{cache: backend}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), "health-probe", "ok", time.Second); err != nil {
			checks["cache"] = "unhealthy: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": checks,
			})
			return
		}
		checks["cache"] = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": checks,
	})
}
