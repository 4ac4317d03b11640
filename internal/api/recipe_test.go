package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plateful/backend/internal/mocks"
	"github.com/plateful/backend/internal/model"
	"github.com/plateful/backend/internal/service"
)

type recipeHandlerFixture struct {
	router    *gin.Engine
	store     *mocks.MockRecipeMemoryStore
	generator *mocks.MockRecipeGenerator
	embedder  *mocks.MockTextEmbedder
}

func newRecipeHandlerFixture(t *testing.T) *recipeHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := new(mocks.MockRecipeMemoryStore)
	generator := new(mocks.MockRecipeGenerator)
	embedder := new(mocks.MockTextEmbedder)
	logger := zap.NewNop()

	diversity, err := service.NewDiversityService(service.DefaultScoreWeights(), logger)
	require.NoError(t, err)

	orchestrator := service.NewGenerationOrchestrator(
		store,
		generator,
		embedder,
		service.NewSimilarityService(logger),
		diversity,
		service.DefaultOrchestratorConfig(),
		logger,
	)

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
	})
	NewRecipeHandler(orchestrator, store, logger).RegisterRoutes(group, nil)

	return &recipeHandlerFixture{
		router:    router,
		store:     store,
		generator: generator,
		embedder:  embedder,
	}
}

func (f *recipeHandlerFixture) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func (f *recipeHandlerFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	f.router.ServeHTTP(w, req)
	return w
}

func storedRecipe(userID string) *model.RecipeMemory {
	return &model.RecipeMemory{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "Lemon Chicken",
		CreatedAt: time.Now().UTC(),
		Metadata: model.RecipeMetadata{
			Cuisine:        "italian",
			PrimaryProtein: "chicken",
		},
	}
}

func TestGenerateRecipeEndpoint(t *testing.T) {
	t.Run("accepted recipe returns 201 with generation metadata", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		draft := &model.RecipeDraft{
			Name:  "Lemon Chicken",
			Notes: "bright and fast",
			Metadata: model.RecipeMetadata{
				Cuisine:        "italian",
				PrimaryProtein: "chicken",
			},
		}

		f.store.On("GetRecentRecipes", mock.Anything, "user-1", service.DefaultWindowDays).
			Return([]model.RecipeMemory{}, nil)
		f.generator.On("GenerateRecipe", mock.Anything, "dinner", "healthy", (*service.DiversityConstraints)(nil), mock.Anything).
			Return(draft, nil)
		f.embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1, 0.2}, nil)
		f.embedder.On("Model").Return("text-embedding-3-small")
		f.store.On("SaveRecipeMemory", mock.Anything, mock.Anything).
			Return(storedRecipe("user-1"), nil)

		w := f.post(t, "/api/v1/recipes/generate", GenerateRecipeRequest{
			MealType:       "dinner",
			StyleType:      "healthy",
			ConversationID: "conv-1",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp GenerateRecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Lemon Chicken", resp.Recipe.Name)
		assert.Equal(t, 1, resp.Generation.Attempts)
		assert.False(t, resp.Generation.WasRetried)
	})

	t.Run("missing field returns 400", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)

		w := f.post(t, "/api/v1/recipes/generate", map[string]string{
			"style_type":      "healthy",
			"conversation_id": "conv-1",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.generator.AssertNotCalled(t, "GenerateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exhausted retries return 422 with rejection detail", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		history := []model.RecipeMemory{{
			ID:        uuid.New(),
			UserID:    "user-1",
			Name:      "Lemon Chicken",
			CreatedAt: time.Now().UTC(),
			Embedding: pgvector.NewVector([]float32{1, 0, 0}),
		}}
		draft := &model.RecipeDraft{Name: "Lemon Chicken Again"}

		f.store.On("GetRecentRecipes", mock.Anything, "user-1", service.DefaultWindowDays).
			Return(history, nil)
		f.generator.On("GenerateRecipe", mock.Anything, "dinner", "healthy", mock.Anything, mock.Anything).
			Return(draft, nil)
		// identical embedding: every attempt trips the similarity check
		f.embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)

		w := f.post(t, "/api/v1/recipes/generate", GenerateRecipeRequest{
			MealType:       "dinner",
			StyleType:      "healthy",
			ConversationID: "conv-1",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp ExhaustionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, service.DefaultMaxRetries, resp.Attempts)
		assert.InDelta(t, 1.0, resp.MaxSimilarity, 1e-6)
		f.store.AssertNotCalled(t, "SaveRecipeMemory", mock.Anything, mock.Anything)
	})

	t.Run("generator failure returns 502", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)

		f.store.On("GetRecentRecipes", mock.Anything, "user-1", service.DefaultWindowDays).
			Return([]model.RecipeMemory{}, nil)
		f.generator.On("GenerateRecipe", mock.Anything, "dinner", "healthy", (*service.DiversityConstraints)(nil), mock.Anything).
			Return(nil, assert.AnError)

		w := f.post(t, "/api/v1/recipes/generate", GenerateRecipeRequest{
			MealType:       "dinner",
			StyleType:      "healthy",
			ConversationID: "conv-1",
		})

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestGetRecipeEndpoint(t *testing.T) {
	t.Run("own recipe is returned and access time stamped", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		recipe := storedRecipe("user-1")

		f.store.On("GetRecipeByID", mock.Anything, recipe.ID).Return(recipe, nil)
		f.store.On("TouchLastAccessed", mock.Anything, recipe.ID).Return(nil)

		w := f.get(t, "/api/v1/recipes/"+recipe.ID.String())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Lemon Chicken")
		f.store.AssertCalled(t, "TouchLastAccessed", mock.Anything, recipe.ID)
	})

	t.Run("another user's recipe reads as not found", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		recipe := storedRecipe("user-2")

		f.store.On("GetRecipeByID", mock.Anything, recipe.ID).Return(recipe, nil)

		w := f.get(t, "/api/v1/recipes/"+recipe.ID.String())

		assert.Equal(t, http.StatusNotFound, w.Code)
		f.store.AssertNotCalled(t, "TouchLastAccessed", mock.Anything, mock.Anything)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		id := uuid.New()

		f.store.On("GetRecipeByID", mock.Anything, id).Return(nil, service.ErrRecipeNotFound)

		w := f.get(t, "/api/v1/recipes/"+id.String())

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)

		w := f.get(t, "/api/v1/recipes/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListRecentRecipesEndpoint(t *testing.T) {
	t.Run("default window", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		f.store.On("GetRecentRecipes", mock.Anything, "user-1", service.DefaultWindowDays).
			Return([]model.RecipeMemory{*storedRecipe("user-1")}, nil)

		w := f.get(t, "/api/v1/recipes")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Lemon Chicken")
	})

	t.Run("explicit window", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)
		f.store.On("GetRecentRecipes", mock.Anything, "user-1", 30).
			Return([]model.RecipeMemory{}, nil)

		w := f.get(t, "/api/v1/recipes?days=30")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid window returns 400", func(t *testing.T) {
		f := newRecipeHandlerFixture(t)

		w := f.get(t, "/api/v1/recipes?days=soon")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
