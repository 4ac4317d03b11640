package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/testhelpers"
)

// Exercises the generation rate limiter against a real Redis: the
// admit/deny window, the read-only remaining counter, and the 429 the
// middleware returns once the window is spent.
func TestGenerationRateLimiterRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client := testhelpers.SetupTestRedis(t)
	ctx := context.Background()
	limiter := middleware.NewGenerationRateLimiter(client, 3)

	t.Run("fresh window reports the full quota", func(t *testing.T) {
		remaining, resetTime, err := limiter.GetRemainingRequests(ctx, "quota-user")
		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
		assert.True(t, resetTime.After(time.Now()))
	})

	t.Run("checking quota does not consume requests", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, _, err := limiter.GetRemainingRequests(ctx, "reader-user")
			require.NoError(t, err)
		}
		remaining, _, err := limiter.GetRemainingRequests(ctx, "reader-user")
		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
	})

	t.Run("admits until the limit then denies", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, _, _, err := limiter.IsAllowed(ctx, "busy-user")
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, remaining, _, err := limiter.IsAllowed(ctx, "busy-user")
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)

		remaining, _, err = limiter.GetRemainingRequests(ctx, "busy-user")
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})

	t.Run("middleware returns 429 once the window is spent", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(func(c *gin.Context) { c.Set("user_id", "spent-user") })
		router.POST("/generate", limiter.RateLimitMiddleware(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		var lastCode int
		for i := 0; i < 4; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/generate", nil)
			router.ServeHTTP(w, req)
			lastCode = w.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, lastCode)
	})
}
