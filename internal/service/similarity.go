package service

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/backend/internal/model"
)

// DefaultSimilarityThreshold is the similarity above which a candidate is
// treated as a near-duplicate of a historical recipe.
const DefaultSimilarityThreshold = 0.85

// DefaultDecayFactor is the per-day multiplier applied to historical
// similarities in the decayed scan.
const DefaultDecayFactor = 0.95

// SimilarityCheck is the outcome of scanning a candidate embedding against
// a user's recipe history.
type SimilarityCheck struct {
	IsSimilar     bool
	MaxSimilarity float64
	MostSimilar   *model.RecipeMemory
}

// SimilarityService compares candidate embeddings against recipe history.
type SimilarityService struct {
	logger *zap.Logger
}

func NewSimilarityService(logger *zap.Logger) *SimilarityService {
	return &SimilarityService{logger: logger}
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different dimensionality are an error; zero-length or
// zero-norm vectors yield 0 rather than dividing by zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// CheckSimilarity scans the full history and reports the single closest
// match. History at this scale is small, so the scan does not early-exit;
// the true maximum matters more than speed.
func (s *SimilarityService) CheckSimilarity(candidate []float32, history []model.RecipeMemory, threshold float64) SimilarityCheck {
	check := SimilarityCheck{}
	for i := range history {
		sim, err := CosineSimilarity(candidate, history[i].Embedding.Slice())
		if err != nil {
			// A malformed record must not abort the whole scan
			s.logger.Warn("skipping history record in similarity scan",
				zap.String("recipe_id", history[i].ID.String()),
				zap.Error(err))
			continue
		}
		if sim > check.MaxSimilarity {
			check.MaxSimilarity = sim
			check.MostSimilar = &history[i]
		}
	}
	check.IsSimilar = check.MaxSimilarity >= threshold
	return check
}

// CheckSimilarityWithDecay is CheckSimilarity with each historical
// similarity down-weighted by decayFactor^ageInDays, so recent repetition
// dominates the signal over old repetition.
func (s *SimilarityService) CheckSimilarityWithDecay(candidate []float32, history []model.RecipeMemory, threshold, decayFactor float64) SimilarityCheck {
	check := SimilarityCheck{}
	now := time.Now()
	for i := range history {
		sim, err := CosineSimilarity(candidate, history[i].Embedding.Slice())
		if err != nil {
			s.logger.Warn("skipping history record in decayed similarity scan",
				zap.String("recipe_id", history[i].ID.String()),
				zap.Error(err))
			continue
		}
		ageDays := now.Sub(history[i].CreatedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		weighted := sim * math.Pow(decayFactor, ageDays)
		if weighted > check.MaxSimilarity {
			check.MaxSimilarity = weighted
			check.MostSimilar = &history[i]
		}
	}
	check.IsSimilar = check.MaxSimilarity >= threshold
	return check
}
