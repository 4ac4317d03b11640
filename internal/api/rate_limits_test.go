package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/testhelpers"
)

func rateLimitRouter(limiter *middleware.RateLimiter, limit int, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("")
	group.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
	})
	registerRateLimitRoutes(group, limiter, limit)
	return router
}

func TestRateLimitStatusEndpoint(t *testing.T) {
	t.Run("reports the quota left after consumed requests", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping container-based test in short mode")
		}
		client := testhelpers.SetupTestRedis(t)
		limiter := middleware.NewGenerationRateLimiter(client, 5)

		ctx := context.Background()
		for i := 0; i < 2; i++ {
			_, _, _, err := limiter.IsAllowed(ctx, "user-1")
			require.NoError(t, err)
		}

		router := rateLimitRouter(limiter, 5, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rate-limits/generation", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Limit     int    `json:"limit"`
			Remaining int    `json:"remaining"`
			ResetTime int64  `json:"reset_time"`
			Window    string `json:"window"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 5, body.Limit)
		assert.Equal(t, 3, body.Remaining)
		assert.Equal(t, "1h", body.Window)
		assert.Greater(t, body.ResetTime, int64(0))
	})

	t.Run("unreachable redis is a server error", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		limiter := middleware.NewGenerationRateLimiter(client, 5)

		router := rateLimitRouter(limiter, 5, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rate-limits/generation", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("missing user is unauthorized", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		limiter := middleware.NewGenerationRateLimiter(client, 5)

		router := rateLimitRouter(limiter, 5, "")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rate-limits/generation", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
