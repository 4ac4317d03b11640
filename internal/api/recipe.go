package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plateful/backend/internal/service"
)

// RecipeHandler serves recipe generation and history reads.
type RecipeHandler struct {
	orchestrator *service.GenerationOrchestrator
	store        service.RecipeMemoryStore
	logger       *zap.Logger
}

func NewRecipeHandler(orchestrator *service.GenerationOrchestrator, store service.RecipeMemoryStore, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, rateLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		if rateLimit != nil {
			recipes.POST("/generate", rateLimit, h.GenerateRecipe)
		} else {
			recipes.POST("/generate", h.GenerateRecipe)
		}
		recipes.GET("", h.ListRecentRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}
}

// GenerateRecipe runs the full generate-check-retry loop for the
// authenticated user.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orchestrator.Generate(c.Request.Context(), service.GenerateRequest{
		MealType:            req.MealType,
		StyleType:           req.StyleType,
		UserID:              c.GetString("user_id"),
		ConversationID:      req.ConversationID,
		MaxRetries:          req.MaxRetries,
		SimilarityThreshold: req.SimilarityThreshold,
		TemporalWindowDays:  req.TemporalWindowDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, GenerateRecipeResponse{
		Recipe:     result.Recipe,
		Generation: result.Metadata,
	})
}

// GetRecipe returns one stored recipe and stamps its access time.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.store.GetRecipeByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if recipe.UserID != c.GetString("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	if err := h.store.TouchLastAccessed(c.Request.Context(), id); err != nil {
		h.logger.Warn("failed to stamp recipe access time",
			zap.String("recipe_id", id.String()),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, recipe)
}

// ListRecentRecipes returns the user's history inside the requested
// window, newest first.
func (h *RecipeHandler) ListRecentRecipes(c *gin.Context) {
	windowDays := service.DefaultWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		windowDays = parsed
	}

	recipes, err := h.store.GetRecentRecipes(c.Request.Context(), c.GetString("user_id"), windowDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes":     recipes,
		"window_days": windowDays,
	})
}
