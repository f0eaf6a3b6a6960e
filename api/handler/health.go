package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/koans/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// PoolReporter exposes browser page pool utilisation.
type PoolReporter interface {
	MaxPages() int
	ActivePages() int
}

// Health returns a handler for GET /api/v1/health.
//
// pool may be nil when the browser engine is disabled. With a pool, status
// degrades when more than 80% of pages are active.
func Health(pool PoolReporter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		}

		if pool != nil {
			stats := &models.PoolStats{MaxPages: pool.MaxPages(), ActivePages: pool.ActivePages()}
			if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
				resp.Status = "degraded"
			}
			resp.PoolStats = stats
		}

		c.JSON(http.StatusOK, resp)
	}
}
