package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/model"
	"github.com/plateful/backend/internal/service"
)

func newPreferencesRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.UserPreferences{}))

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
	})
	NewPreferenceHandler(service.NewPreferenceService(db), zap.NewNop()).RegisterRoutes(group)
	return router
}

func TestPreferencesEndpoints(t *testing.T) {
	router := newPreferencesRouter(t)

	do := func(method, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		var req *http.Request
		if body == "" {
			req, _ = http.NewRequest(method, "/api/v1/preferences", nil)
		} else {
			req, _ = http.NewRequest(method, "/api/v1/preferences", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
		}
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("get before any write returns empty profile", func(t *testing.T) {
		w := do("GET", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var prefs model.UserPreferences
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
		assert.Equal(t, "user-1", prefs.UserID)
		assert.Empty(t, prefs.Allergens)
	})

	t.Run("put merges partial updates", func(t *testing.T) {
		w := do("PUT", `{"allergens": ["peanuts"]}`)
		assert.Equal(t, http.StatusOK, w.Code)

		w = do("PUT", `{"favorite_cuisines": ["thai"], "calorie_target": 2000}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var prefs model.UserPreferences
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
		assert.Equal(t, model.JSONBStringArray{"peanuts"}, prefs.Allergens)
		assert.Equal(t, model.JSONBStringArray{"thai"}, prefs.FavoriteCuisines)
		assert.Equal(t, 2000, prefs.CalorieTarget)
	})

	t.Run("put with malformed body returns 400", func(t *testing.T) {
		w := do("PUT", `{"allergens": "peanuts"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete resets the profile", func(t *testing.T) {
		w := do("DELETE", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = do("GET", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var prefs model.UserPreferences
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
		assert.Empty(t, prefs.Allergens)
		assert.Empty(t, prefs.FavoriteCuisines)
	})
}
