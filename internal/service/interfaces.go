package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/plateful/backend/internal/model"
)

// RecipeGenerator is the external LLM collaborator. A nil draft or an
// error is a generator failure, never a diversity failure.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, mealType, styleType string, constraints *DiversityConstraints, temperature float64) (*model.RecipeDraft, error)
}

// TextEmbedder is the external embedding collaborator. Vectors have a
// fixed dimensionality for a given model version.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// SaveRecipeMemoryParams is everything the store needs to persist an
// accepted recipe.
type SaveRecipeMemoryParams struct {
	UserID          string
	ConversationID  string
	Draft           model.RecipeDraft
	Embedding       []float32
	EmbeddingModel  string
	AcceptedAttempt int
	WasRetried      bool
	SimilarityScore float64
}

// RecipeMemoryStore is the persistence contract for accepted recipes.
// Implementations must never be handed rejected drafts; the orchestrator
// only calls Save after acceptance.
type RecipeMemoryStore interface {
	GetRecentRecipes(ctx context.Context, userID string, windowDays int) ([]model.RecipeMemory, error)
	SaveRecipeMemory(ctx context.Context, params SaveRecipeMemoryParams) (*model.RecipeMemory, error)
	GetRecipeByID(ctx context.Context, id uuid.UUID) (*model.RecipeMemory, error)
	TouchLastAccessed(ctx context.Context, id uuid.UUID) error
	CleanupOldRecipes(ctx context.Context, userID string, retentionDays int) (int64, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

// DiversityMetricsStore persists per-user analytics snapshots.
type DiversityMetricsStore interface {
	GetMetrics(ctx context.Context, userID string) (*model.DiversityMetrics, error)
	SaveMetrics(ctx context.Context, metrics *model.DiversityMetrics) error
}
