package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Health reports liveness, pinging the database when one is configured.
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Error().Err(err).Msg("health check failed: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
