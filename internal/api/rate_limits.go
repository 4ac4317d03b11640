package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateful/backend/internal/middleware"
)

// registerRateLimitRoutes exposes the caller's remaining generation quota.
// Reading the counter never consumes a request; only the generate route
// itself increments it.
func registerRateLimitRoutes(group *gin.RouterGroup, limiter *middleware.RateLimiter, limit int) {
	group.GET("/rate-limits/generation", func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		remaining, resetTime, err := limiter.GetRemainingRequests(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"limit":      limit,
			"remaining":  remaining,
			"reset_time": resetTime.Unix(),
			"window":     "1h",
		})
	})
}
