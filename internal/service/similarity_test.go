package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plateful/backend/internal/model"
)

func historyRecord(embedding []float32, age time.Duration) model.RecipeMemory {
	return model.RecipeMemory{
		ID:        uuid.New(),
		Embedding: pgvector.NewVector(embedding),
		CreatedAt: time.Now().Add(-age),
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		v := []float32{0.3, 0.5, 0.2}
		sim, err := CosineSimilarity(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, sim, 1e-9)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 2}, []float32{-1, -2})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, sim, 1e-9)
	})

	t.Run("mismatched dimensions fail", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "dimension mismatch")
	})

	t.Run("zero-length vectors score 0", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{}, []float32{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, sim)
	})

	t.Run("zero-norm vector scores 0 instead of failing", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 0.0, sim)
	})
}

func TestCheckSimilarity(t *testing.T) {
	svc := NewSimilarityService(zap.NewNop())

	t.Run("empty history is never similar", func(t *testing.T) {
		check := svc.CheckSimilarity([]float32{1, 0, 0}, nil, DefaultSimilarityThreshold)
		assert.False(t, check.IsSimilar)
		assert.Equal(t, 0.0, check.MaxSimilarity)
		assert.Nil(t, check.MostSimilar)
	})

	t.Run("reports the true maximum over the whole history", func(t *testing.T) {
		candidate := []float32{1, 0, 0}
		history := []model.RecipeMemory{
			historyRecord([]float32{0, 1, 0}, time.Hour),
			historyRecord([]float32{0.9, 0.1, 0}, 2*time.Hour),
			historyRecord([]float32{0.5, 0.5, 0}, 3*time.Hour),
		}

		check := svc.CheckSimilarity(candidate, history, DefaultSimilarityThreshold)

		var want float64
		for i := range history {
			sim, err := CosineSimilarity(candidate, history[i].Embedding.Slice())
			require.NoError(t, err)
			if sim > want {
				want = sim
			}
		}
		assert.InDelta(t, want, check.MaxSimilarity, 1e-9)
		require.NotNil(t, check.MostSimilar)
		assert.Equal(t, history[1].ID, check.MostSimilar.ID)
	})

	t.Run("flags similarity at or above the threshold", func(t *testing.T) {
		history := []model.RecipeMemory{historyRecord([]float32{1, 0, 0}, time.Hour)}
		check := svc.CheckSimilarity([]float32{1, 0, 0}, history, 0.85)
		assert.True(t, check.IsSimilar)
	})

	t.Run("skips malformed records instead of failing", func(t *testing.T) {
		history := []model.RecipeMemory{
			historyRecord([]float32{1, 0}, time.Hour), // wrong dimensionality
			historyRecord([]float32{0.7, 0.7, 0}, 2*time.Hour),
		}
		check := svc.CheckSimilarity([]float32{1, 0, 0}, history, 0.99)
		assert.False(t, check.IsSimilar)
		assert.Greater(t, check.MaxSimilarity, 0.0)
		assert.Equal(t, history[1].ID, check.MostSimilar.ID)
	})
}

func TestCheckSimilarityWithDecay(t *testing.T) {
	svc := NewSimilarityService(zap.NewNop())

	t.Run("old matches are down-weighted below the threshold", func(t *testing.T) {
		candidate := []float32{1, 0, 0}
		old := historyRecord([]float32{1, 0, 0}, 30*24*time.Hour)

		plain := svc.CheckSimilarity(candidate, []model.RecipeMemory{old}, 0.85)
		decayed := svc.CheckSimilarityWithDecay(candidate, []model.RecipeMemory{old}, 0.85, DefaultDecayFactor)

		assert.True(t, plain.IsSimilar)
		assert.False(t, decayed.IsSimilar)
		assert.Less(t, decayed.MaxSimilarity, plain.MaxSimilarity)
	})

	t.Run("recent matches keep nearly full weight", func(t *testing.T) {
		candidate := []float32{1, 0, 0}
		recent := historyRecord([]float32{1, 0, 0}, time.Hour)

		check := svc.CheckSimilarityWithDecay(candidate, []model.RecipeMemory{recent}, 0.85, DefaultDecayFactor)
		assert.True(t, check.IsSimilar)
		assert.InDelta(t, 1.0, check.MaxSimilarity, 0.01)
	})
}
