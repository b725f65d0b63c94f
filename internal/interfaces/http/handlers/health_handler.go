package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecker interface for checking service health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports liveness and the state of the two backing stores.
// The runner/receiver endpoints stay up even when a store is down; health
// is what load balancers use to route kickoffs away from a bad node.
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{
		checks: map[string]HealthChecker{
			"database": db,
			"redis":    redis,
		},
	}
}

func (h *HealthHandler) runChecks(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			results[name] = "unhealthy"
			healthy = false
		} else {
			results[name] = "healthy"
		}
	}
	return results, healthy
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	results, healthy := h.runChecks(c.Request.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"service": "domainsync",
		"status":  status,
		"checks":  results,
	})
}

// Ready handles GET /ready. Planning needs both stores, so readiness is
// all-or-nothing.
func (h *HealthHandler) Ready(c *gin.Context) {
	if _, healthy := h.runChecks(c.Request.Context()); !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// Live handles GET /live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alive": true})
}
