package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plateful/backend/internal/service"
)

// PreferenceHandler serves the user's standing dietary profile.
type PreferenceHandler struct {
	preferences *service.PreferenceService
	logger      *zap.Logger
}

func NewPreferenceHandler(preferences *service.PreferenceService, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences, logger: logger}
}

func (h *PreferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.UpdatePreferences)
		prefs.DELETE("", h.DeletePreferences)
	}
}

func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferences.GetPreferences(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	var req service.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs, err := h.preferences.UpdatePreferences(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferenceHandler) DeletePreferences(c *gin.Context) {
	if err := h.preferences.DeletePreferences(c.Request.Context(), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "preferences deleted"})
}
