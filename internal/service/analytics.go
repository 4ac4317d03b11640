package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/backend/internal/model"
)

const (
	// DefaultMetricsWindowDays is the rolling window for metric snapshots.
	DefaultMetricsWindowDays = 30

	// metricsStaleAfter bounds how old a cached snapshot may be before the
	// summary endpoint recalculates it.
	metricsStaleAfter = 7 * 24 * time.Hour

	// trendBand is the half-to-half mean difference that counts as a real
	// trend rather than noise.
	trendBand = 0.05

	// minRecipesForRecommendations gates the underrepresented-category
	// check; below this there is not enough data to recommend anything.
	minRecipesForRecommendations = 5

	// minScoresForTrend gates trend detection the same way.
	minScoresForTrend = 4
)

// Insights is the human-readable reading of a metrics snapshot.
type Insights struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Achievements    []string `json:"achievements"`
}

// AggregateReport summarizes a batch aggregation run.
type AggregateReport struct {
	Processed int
	Failed    int
}

// AnalyticsService computes rolling-window diversity metrics and renders
// them into insights.
type AnalyticsService struct {
	store      RecipeMemoryStore
	metrics    DiversityMetricsStore
	windowDays int
	logger     *zap.Logger
}

func NewAnalyticsService(store RecipeMemoryStore, metrics DiversityMetricsStore, windowDays int, logger *zap.Logger) *AnalyticsService {
	if windowDays <= 0 {
		windowDays = DefaultMetricsWindowDays
	}
	return &AnalyticsService{store: store, metrics: metrics, windowDays: windowDays, logger: logger}
}

// CalculateDiversityMetrics builds a fresh snapshot for the user over the
// given window.
func (s *AnalyticsService) CalculateDiversityMetrics(ctx context.Context, userID string, windowDays int) (*model.DiversityMetrics, error) {
	if windowDays <= 0 {
		windowDays = DefaultMetricsWindowDays
	}

	history, err := s.store.GetRecentRecipes(ctx, userID, windowDays)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	metrics := &model.DiversityMetrics{
		UserID:              userID,
		WindowStart:         now.AddDate(0, 0, -windowDays),
		WindowEnd:           now,
		CuisineDistribution: model.JSONBCountMap{},
		ProteinDistribution: model.JSONBCountMap{},
		MethodDistribution:  model.JSONBCountMap{},
		Trend:               model.TrendStable,
		TotalRecipes:        len(history),
		CalculatedAt:        now,
	}

	var scoreSum float64
	var scoreCount int
	// history is newest-first; trend detection wants chronological order
	chronological := make([]float64, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		rec := history[i]
		if c := normalizeCuisine(rec.Metadata.Cuisine); c != "" {
			metrics.CuisineDistribution[c]++
		}
		if p := normalizeProtein(rec.Metadata.PrimaryProtein); p != "" {
			metrics.ProteinDistribution[p]++
		}
		if m := normalizeMethod(rec.Metadata.CookingMethod); m != "" {
			metrics.MethodDistribution[m]++
		}
		// Every accepted recipe records its score, including the zero a
		// first recipe gets against empty history.
		scoreSum += rec.SimilarityScore
		scoreCount++
		chronological = append(chronological, rec.SimilarityScore)
	}

	if scoreCount > 0 {
		metrics.AverageDiversityScore = scoreSum / float64(scoreCount)
	}
	metrics.Trend = detectTrend(chronological)
	metrics.UniqueCuisines = len(metrics.CuisineDistribution)
	metrics.UniqueProteins = len(metrics.ProteinDistribution)

	if metrics.TotalRecipes >= minRecipesForRecommendations {
		metrics.UnderrepresentedCuisines = underrepresented(referenceCuisines, metrics.CuisineDistribution, metrics.TotalRecipes)
		metrics.UnderrepresentedProteins = underrepresented(referenceProteins, metrics.ProteinDistribution, metrics.TotalRecipes)
		metrics.UnderrepresentedMethods = underrepresented(referenceMethods, metrics.MethodDistribution, metrics.TotalRecipes)
	}

	return metrics, nil
}

// detectTrend splits the chronological score sequence in half and compares
// means. Fewer than four points is always stable; there is no signal.
func detectTrend(scores []float64) model.Trend {
	if len(scores) < minScoresForTrend {
		return model.TrendStable
	}
	half := len(scores) / 2
	firstMean := mean(scores[:half])
	secondMean := mean(scores[half:])
	switch {
	case secondMean-firstMean > trendBand:
		return model.TrendImproving
	case firstMean-secondMean > trendBand:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// underrepresented lists reference values occurring in fewer than 10% of
// the user's recipes (minimum count one).
func underrepresented(reference []string, distribution model.JSONBCountMap, total int) model.JSONBStringArray {
	required := math.Max(1, 0.1*float64(total))
	var out model.JSONBStringArray
	for _, value := range reference {
		if float64(distribution[value]) < required {
			out = append(out, value)
		}
	}
	return out
}

// GenerateInsights renders a metrics snapshot into the summary,
// recommendation and achievement strings shown to the user.
func (s *AnalyticsService) GenerateInsights(metrics *model.DiversityMetrics) Insights {
	insights := Insights{
		Recommendations: []string{},
		Achievements:    []string{},
	}

	switch {
	case metrics.AverageDiversityScore >= 0.7:
		insights.Summary = fmt.Sprintf("Excellent variety! Your %d recent recipes span %d cuisines and %d proteins.",
			metrics.TotalRecipes, metrics.UniqueCuisines, metrics.UniqueProteins)
	case metrics.AverageDiversityScore >= 0.5:
		insights.Summary = fmt.Sprintf("Good variety across your %d recent recipes, with room to explore further.",
			metrics.TotalRecipes)
	default:
		insights.Summary = fmt.Sprintf("Your %d recent recipes show moderate variety; trying new categories would help.",
			metrics.TotalRecipes)
	}

	if metrics.UniqueCuisines >= 10 {
		insights.Achievements = append(insights.Achievements, "World traveler: 10+ cuisines explored")
	}
	if metrics.UniqueProteins >= 6 {
		insights.Achievements = append(insights.Achievements, "Protein explorer: 6+ protein types")
	}
	if metrics.Trend == model.TrendImproving {
		insights.Achievements = append(insights.Achievements, "Your recipe variety is improving")
	}

	for i, cuisine := range metrics.UnderrepresentedCuisines {
		if i >= 3 {
			break
		}
		insights.Recommendations = append(insights.Recommendations, fmt.Sprintf("Try a %s recipe for something new", cuisine))
	}
	for i, protein := range metrics.UnderrepresentedProteins {
		if i >= 3 {
			break
		}
		insights.Recommendations = append(insights.Recommendations, fmt.Sprintf("You haven't had much %s lately", protein))
	}
	if metrics.Trend == model.TrendDeclining {
		insights.Recommendations = append(insights.Recommendations, "Your recipes are getting more repetitive; consider a new cuisine or cooking method")
	}
	if cuisine, share := dominantShare(metrics.CuisineDistribution, metrics.TotalRecipes); share > 0.4 {
		insights.Recommendations = append(insights.Recommendations, fmt.Sprintf("Over 40%% of your recent recipes are %s; branching out would add variety", cuisine))
	}

	return insights
}

func dominantShare(distribution model.JSONBCountMap, total int) (string, float64) {
	if total == 0 {
		return "", 0
	}
	var topValue string
	var topCount int
	for value, count := range distribution {
		if count > topCount {
			topValue = value
			topCount = count
		}
	}
	return topValue, float64(topCount) / float64(total)
}

// GetUserDiversitySummary reuses the saved snapshot when it is fresh
// enough, otherwise recalculates and persists before rendering insights.
// This is the only read with a staleness bound; everything else is
// always-fresh.
func (s *AnalyticsService) GetUserDiversitySummary(ctx context.Context, userID string) (*model.DiversityMetrics, Insights, error) {
	cached, err := s.metrics.GetMetrics(ctx, userID)
	if err != nil {
		return nil, Insights{}, err
	}
	if cached != nil && time.Since(cached.CalculatedAt) < metricsStaleAfter {
		return cached, s.GenerateInsights(cached), nil
	}

	fresh, err := s.CalculateDiversityMetrics(ctx, userID, s.windowDays)
	if err != nil {
		return nil, Insights{}, err
	}
	if err := s.metrics.SaveMetrics(ctx, fresh); err != nil {
		return nil, Insights{}, err
	}
	return fresh, s.GenerateInsights(fresh), nil
}

// AggregateAllUsers recalculates metrics for every user with history. One
// user's failure is logged and counted, never fatal to the batch.
func (s *AnalyticsService) AggregateAllUsers(ctx context.Context) (AggregateReport, error) {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return AggregateReport{}, err
	}

	report := AggregateReport{}
	for _, userID := range userIDs {
		metrics, err := s.CalculateDiversityMetrics(ctx, userID, s.windowDays)
		if err == nil {
			err = s.metrics.SaveMetrics(ctx, metrics)
		}
		if err != nil {
			report.Failed++
			s.logger.Error("failed to aggregate user metrics",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		report.Processed++
	}

	s.logger.Info("aggregation run complete",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed))
	return report, nil
}
