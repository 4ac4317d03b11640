package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plateful/backend/internal/service"
)

// AnalyticsHandler serves diversity metric summaries.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	diversity := router.Group("/diversity")
	{
		diversity.GET("/summary", h.GetSummary)
	}
}

// GetSummary returns the user's diversity snapshot and its insights,
// recalculating first when the saved snapshot is stale.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	metrics, insights, err := h.analytics.GetUserDiversitySummary(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DiversitySummaryResponse{
		Metrics:  metrics,
		Insights: insights,
	})
}
