package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plateful/backend/internal/mocks"
	"github.com/plateful/backend/internal/model"
	"github.com/plateful/backend/internal/service"
)

func newAnalyticsRouter(t *testing.T) (*gin.Engine, *mocks.MockRecipeMemoryStore, *mocks.MockDiversityMetricsStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := new(mocks.MockRecipeMemoryStore)
	metricsStore := new(mocks.MockDiversityMetricsStore)
	analytics := service.NewAnalyticsService(store, metricsStore, service.DefaultMetricsWindowDays, zap.NewNop())

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
	})
	NewAnalyticsHandler(analytics, zap.NewNop()).RegisterRoutes(group)
	return router, store, metricsStore
}

func TestDiversitySummaryEndpoint(t *testing.T) {
	t.Run("fresh snapshot is served with insights", func(t *testing.T) {
		router, _, metricsStore := newAnalyticsRouter(t)
		metricsStore.On("GetMetrics", mock.Anything, "user-1").Return(&model.DiversityMetrics{
			UserID:                "user-1",
			TotalRecipes:          12,
			UniqueCuisines:        11,
			UniqueProteins:        7,
			AverageDiversityScore: 0.82,
			Trend:                 model.TrendImproving,
			CalculatedAt:          time.Now().UTC(),
		}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/diversity/summary", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp DiversitySummaryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 12, resp.Metrics.TotalRecipes)
		assert.Contains(t, resp.Insights.Summary, "Excellent variety")
		assert.NotEmpty(t, resp.Insights.Achievements)
	})

	t.Run("missing snapshot is calculated on demand", func(t *testing.T) {
		router, store, metricsStore := newAnalyticsRouter(t)
		metricsStore.On("GetMetrics", mock.Anything, "user-1").Return(nil, nil)
		store.On("GetRecentRecipes", mock.Anything, "user-1", service.DefaultMetricsWindowDays).
			Return([]model.RecipeMemory{}, nil)
		metricsStore.On("SaveMetrics", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/diversity/summary", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		metricsStore.AssertCalled(t, "SaveMetrics", mock.Anything, mock.Anything)
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		router, _, metricsStore := newAnalyticsRouter(t)
		metricsStore.On("GetMetrics", mock.Anything, "user-1").Return(nil, assert.AnError)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/diversity/summary", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
