package api

import (
	"github.com/plateful/backend/internal/model"
	"github.com/plateful/backend/internal/service"
)

// GenerateRecipeRequest is the body of POST /api/v1/recipes/generate.
type GenerateRecipeRequest struct {
	MealType       string `json:"meal_type" binding:"required"`
	StyleType      string `json:"style_type" binding:"required"`
	ConversationID string `json:"conversation_id" binding:"required"`

	MaxRetries          int     `json:"max_retries,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	TemporalWindowDays  int     `json:"temporal_window_days,omitempty"`
}

// GenerateRecipeResponse pairs the accepted recipe with its generation
// metadata.
type GenerateRecipeResponse struct {
	Recipe     *model.RecipeMemory        `json:"recipe"`
	Generation service.GenerationMetadata `json:"generation"`
}

// DiversitySummaryResponse is the body of GET /api/v1/diversity/summary.
type DiversitySummaryResponse struct {
	Metrics  *model.DiversityMetrics `json:"metrics"`
	Insights service.Insights        `json:"insights"`
}

// ExhaustionResponse explains a generation request that ran out of
// retries. This is a structured rejection, not a server error.
type ExhaustionResponse struct {
	Error               string   `json:"error"`
	Attempts            int      `json:"attempts"`
	MaxSimilarity       float64  `json:"max_similarity"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
	DiversityScore      float64  `json:"diversity_score"`
	DiversityThreshold  float64  `json:"diversity_threshold"`
	Weaknesses          []string `json:"weaknesses,omitempty"`
	Suggestions         []string `json:"suggestions,omitempty"`
}
