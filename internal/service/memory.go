package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/model"
)

// MemoryService is the gorm-backed RecipeMemoryStore.
type MemoryService struct {
	db *gorm.DB
}

func NewMemoryService(db *gorm.DB) *MemoryService {
	return &MemoryService{db: db}
}

// GetRecentRecipes returns the user's recipes created within the window,
// newest first. No rows is a normal result, not an error.
func (s *MemoryService) GetRecentRecipes(ctx context.Context, userID string, windowDays int) ([]model.RecipeMemory, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	var recipes []model.RecipeMemory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent recipes: %w", err)
	}
	return recipes, nil
}

// SaveRecipeMemory persists an accepted recipe, assigning its id and
// timestamps.
func (s *MemoryService) SaveRecipeMemory(ctx context.Context, params SaveRecipeMemoryParams) (*model.RecipeMemory, error) {
	now := time.Now().UTC()
	memory := &model.RecipeMemory{
		ID:              uuid.New(),
		UserID:          params.UserID,
		ConversationID:  params.ConversationID,
		Name:            params.Draft.Name,
		Notes:           params.Draft.Notes,
		Ingredients:     params.Draft.Ingredients,
		Instructions:    model.JSONBStringArray(params.Draft.Instructions),
		Servings:        params.Draft.Servings,
		PrepTimeMin:     params.Draft.PrepTimeMin,
		CookTimeMin:     params.Draft.CookTimeMin,
		Calories:        params.Draft.Calories,
		Protein:         params.Draft.Protein,
		Carbs:           params.Draft.Carbs,
		Fat:             params.Draft.Fat,
		Metadata:        params.Draft.Metadata,
		Embedding:       pgvector.NewVector(params.Embedding),
		EmbeddingModel:  params.EmbeddingModel,
		CreatedAt:       now,
		LastAccessedAt:  now,
		AcceptedAttempt: params.AcceptedAttempt,
		WasRetried:      params.WasRetried,
		SimilarityScore: params.SimilarityScore,
	}

	if err := s.db.WithContext(ctx).Create(memory).Error; err != nil {
		return nil, fmt.Errorf("failed to save recipe memory: %w", err)
	}
	return memory, nil
}

func (s *MemoryService) GetRecipeByID(ctx context.Context, id uuid.UUID) (*model.RecipeMemory, error) {
	var memory model.RecipeMemory
	err := s.db.WithContext(ctx).First(&memory, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe memory: %w", err)
	}
	return &memory, nil
}

// TouchLastAccessed stamps last_accessed_at; the only mutation a stored
// recipe ever sees.
func (s *MemoryService) TouchLastAccessed(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&model.RecipeMemory{}).
		Where("id = ?", id).
		Update("last_accessed_at", time.Now().UTC()).Error
}

// CleanupOldRecipes deletes records older than the retention window and
// reports how many went. Used by scheduled maintenance only.
func (s *MemoryService) CleanupOldRecipes(ctx context.Context, userID string, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at < ?", userID, cutoff).
		Delete(&model.RecipeMemory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clean up old recipes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListUserIDs returns every user with at least one stored recipe, for the
// batch aggregation job.
func (s *MemoryService) ListUserIDs(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := s.db.WithContext(ctx).
		Model(&model.RecipeMemory{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return userIDs, nil
}

// MetricsService is the gorm-backed DiversityMetricsStore.
type MetricsService struct {
	db *gorm.DB
}

func NewMetricsService(db *gorm.DB) *MetricsService {
	return &MetricsService{db: db}
}

func (s *MetricsService) GetMetrics(ctx context.Context, userID string) (*model.DiversityMetrics, error) {
	var metrics model.DiversityMetrics
	err := s.db.WithContext(ctx).First(&metrics, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load diversity metrics: %w", err)
	}
	return &metrics, nil
}

// SaveMetrics upserts the user's snapshot; there is one row per user.
func (s *MetricsService) SaveMetrics(ctx context.Context, metrics *model.DiversityMetrics) error {
	var existing model.DiversityMetrics
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", metrics.UserID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if metrics.ID == uuid.Nil {
			metrics.ID = uuid.New()
		}
		if err := s.db.WithContext(ctx).Create(metrics).Error; err != nil {
			return fmt.Errorf("failed to save diversity metrics: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to load diversity metrics: %w", err)
	default:
		metrics.ID = existing.ID
		if err := s.db.WithContext(ctx).Model(&existing).Select("*").Omit("id", "user_id").Updates(metrics).Error; err != nil {
			return fmt.Errorf("failed to update diversity metrics: %w", err)
		}
		return nil
	}
}
