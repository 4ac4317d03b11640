package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/plateful/backend/internal/model"
	"github.com/plateful/backend/internal/service"
)

// MockRecipeGenerator is a mock implementation of the RecipeGenerator interface
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) GenerateRecipe(ctx context.Context, mealType, styleType string, constraints *service.DiversityConstraints, temperature float64) (*model.RecipeDraft, error) {
	args := m.Called(ctx, mealType, styleType, constraints, temperature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeDraft), args.Error(1)
}

// MockTextEmbedder is a mock implementation of the TextEmbedder interface
type MockTextEmbedder struct {
	mock.Mock
}

func (m *MockTextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockTextEmbedder) Model() string {
	args := m.Called()
	return args.String(0)
}

// MockRecipeMemoryStore is a mock implementation of the RecipeMemoryStore interface
type MockRecipeMemoryStore struct {
	mock.Mock
}

func (m *MockRecipeMemoryStore) GetRecentRecipes(ctx context.Context, userID string, windowDays int) ([]model.RecipeMemory, error) {
	args := m.Called(ctx, userID, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecipeMemory), args.Error(1)
}

func (m *MockRecipeMemoryStore) SaveRecipeMemory(ctx context.Context, params service.SaveRecipeMemoryParams) (*model.RecipeMemory, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeMemory), args.Error(1)
}

func (m *MockRecipeMemoryStore) GetRecipeByID(ctx context.Context, id uuid.UUID) (*model.RecipeMemory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeMemory), args.Error(1)
}

func (m *MockRecipeMemoryStore) TouchLastAccessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeMemoryStore) CleanupOldRecipes(ctx context.Context, userID string, retentionDays int) (int64, error) {
	args := m.Called(ctx, userID, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipeMemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockDiversityMetricsStore is a mock implementation of the DiversityMetricsStore interface
type MockDiversityMetricsStore struct {
	mock.Mock
}

func (m *MockDiversityMetricsStore) GetMetrics(ctx context.Context, userID string) (*model.DiversityMetrics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiversityMetrics), args.Error(1)
}

func (m *MockDiversityMetricsStore) SaveMetrics(ctx context.Context, metrics *model.DiversityMetrics) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}
