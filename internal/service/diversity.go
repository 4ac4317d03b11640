package service

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/plateful/backend/internal/model"
)

// Trailing-window sizes per signal. They differ because repetition
// tolerance differs: cuisine repetition is penalized hardest, cooking
// method repetition is tolerated most.
const (
	cuisineWindow    = 10
	proteinWindow    = 8
	methodWindow     = 12
	ingredientWindow = 5
)

// DefaultDiversityThreshold is the composite score a candidate must reach
// when its meal type carries no category-specific override.
const DefaultDiversityThreshold = 0.60

// ScoreWeights combines the sub-scores into the composite diversity score.
// The cuisine weight is zero on purpose: variety is driven by protein,
// method and ingredients so recipes stay within cuisines the user already
// likes. Keep it as data; the product decision may change.
type ScoreWeights struct {
	Semantic   float64
	Cuisine    float64
	Protein    float64
	Method     float64
	Ingredient float64
}

// DefaultScoreWeights returns the tuned production weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Semantic:   0.20,
		Cuisine:    0.00,
		Protein:    0.20,
		Method:     0.20,
		Ingredient: 0.40,
	}
}

// Validate checks that the weights sum to 1. A bad weight table is a
// configuration error and must stop startup, not a request.
func (w ScoreWeights) Validate() error {
	sum := w.Semantic + w.Cuisine + w.Protein + w.Method + w.Ingredient
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("diversity score weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// DiversityScore is the per-candidate scoring result. All sub-scores and
// the overall score are in [0,1].
type DiversityScore struct {
	CuisineVariety       float64  `json:"cuisine_variety"`
	ProteinDiversity     float64  `json:"protein_diversity"`
	CookingMethodVariety float64  `json:"cooking_method_variety"`
	IngredientNovelty    float64  `json:"ingredient_novelty"`
	OverallScore         float64  `json:"overall_score"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
}

// DiversityConstraints are forward-looking generation hints built from the
// recent history window: categories to steer away from and categories to
// suggest. Consumed by the next generation call only, never persisted.
type DiversityConstraints struct {
	AvoidCuisines   []string `json:"avoid_cuisines,omitempty"`
	AvoidProteins   []string `json:"avoid_proteins,omitempty"`
	AvoidMethods    []string `json:"avoid_methods,omitempty"`
	SuggestCuisines []string `json:"suggest_cuisines,omitempty"`
	SuggestProteins []string `json:"suggest_proteins,omitempty"`
	SuggestMethods  []string `json:"suggest_methods,omitempty"`
}

// suggestableProteins is the candidate list for protein suggestions.
var suggestableProteins = []string{"chicken", "fish", "beef", "vegetarian", "lamb"}

// DiversityService scores candidate recipes against recent history and
// derives generation constraints from it.
type DiversityService struct {
	weights ScoreWeights
	// cuisine avoid/suggest lists stay empty while this is false, matching
	// the zero cuisine weight. The scoring path itself always runs.
	cuisineConstraints bool
	logger             *zap.Logger
}

func NewDiversityService(weights ScoreWeights, logger *zap.Logger) (*DiversityService, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &DiversityService{weights: weights, logger: logger}, nil
}

// CalculateDiversityScore scores a candidate draft against the user's
// recent history. History must be ordered newest-first; maxSimilarity is
// the candidate's highest cosine similarity against that history.
func (s *DiversityService) CalculateDiversityScore(draft *model.RecipeDraft, history []model.RecipeMemory, maxSimilarity float64) DiversityScore {
	score := DiversityScore{
		CuisineVariety:       s.cuisineRotationScore(draft.Metadata.Cuisine, history),
		ProteinDiversity:     s.proteinVarietyScore(draft.Metadata.PrimaryProtein, history),
		CookingMethodVariety: s.methodVarietyScore(draft.Metadata.CookingMethod, history),
		IngredientNovelty:    s.ingredientNoveltyScore(draft.Ingredients, history),
	}

	semantic := clamp01(1 - maxSimilarity)
	score.OverallScore = clamp01(
		s.weights.Semantic*semantic +
			s.weights.Cuisine*score.CuisineVariety +
			s.weights.Protein*score.ProteinDiversity +
			s.weights.Method*score.CookingMethodVariety +
			s.weights.Ingredient*score.IngredientNovelty,
	)

	score.Strengths, score.Weaknesses = s.describe(draft, score)
	return score
}

// cuisineRotationScore penalizes recent repetition of the same cuisine
// with exponential decay by window position.
func (s *DiversityService) cuisineRotationScore(cuisine string, history []model.RecipeMemory) float64 {
	candidate := normalizeCuisine(cuisine)
	if candidate == "" {
		return 0.5
	}
	window := trailing(history, cuisineWindow)
	if len(window) == 0 {
		return 1.0
	}

	var weighted float64
	for i, rec := range window {
		if normalizeCuisine(rec.Metadata.Cuisine) == candidate {
			weighted += math.Exp(-float64(i) / 3)
		}
	}
	return math.Max(0, 1-weighted/3)
}

func (s *DiversityService) proteinVarietyScore(protein string, history []model.RecipeMemory) float64 {
	candidate := normalizeProtein(protein)
	if candidate == "" {
		return 0.5
	}
	window := trailing(history, proteinWindow)
	if len(window) == 0 {
		return 1.0
	}

	var weighted float64
	for i, rec := range window {
		if normalizeProtein(rec.Metadata.PrimaryProtein) == candidate {
			weighted += math.Exp(-float64(i) / 2)
		}
	}
	return math.Max(0, 1-weighted/4)
}

func (s *DiversityService) methodVarietyScore(method string, history []model.RecipeMemory) float64 {
	candidate := normalizeMethod(method)
	if candidate == "" {
		return 0.5
	}
	window := trailing(history, methodWindow)
	if len(window) == 0 {
		return 1.0
	}

	var weighted float64
	for i, rec := range window {
		if normalizeMethod(rec.Metadata.CookingMethod) == candidate {
			weighted += math.Exp(-float64(i) / 4)
		}
	}
	return math.Max(0, 1-weighted/5)
}

// ingredientNoveltyScore averages Jaccard overlap between the candidate's
// distinguishing ingredients and each record in the trailing window.
// Overlap above 50% drives the score to zero.
func (s *DiversityService) ingredientNoveltyScore(ingredients model.IngredientList, history []model.RecipeMemory) float64 {
	candidate := ingredientSet(ingredients.Items())
	if len(candidate) == 0 {
		// Nothing but pantry staples; no signal either way
		return 0.5
	}
	window := trailing(history, ingredientWindow)
	if len(window) == 0 {
		return 1.0
	}

	var total float64
	for _, rec := range window {
		total += jaccard(candidate, ingredientSet(rec.Ingredients.Items()))
	}
	avgOverlap := total / float64(len(window))
	return math.Max(0, 1-2*avgOverlap)
}

// describe turns sub-scores into the human-readable strength and weakness
// tags surfaced in logs and rejection payloads. Neither list may be empty.
func (s *DiversityService) describe(draft *model.RecipeDraft, score DiversityScore) (strengths, weaknesses []string) {
	dims := []struct {
		score float64
		name  string
		value string
	}{
		{score.CuisineVariety, "cuisine rotation", draft.Metadata.Cuisine},
		{score.ProteinDiversity, "protein variety", draft.Metadata.PrimaryProtein},
		{score.CookingMethodVariety, "cooking method variety", draft.Metadata.CookingMethod},
		{score.IngredientNovelty, "ingredient novelty", ""},
	}

	for _, d := range dims {
		label := d.name
		if d.value != "" {
			label = fmt.Sprintf("%s (%s)", d.name, strings.ToLower(d.value))
		}
		switch {
		case d.score >= 0.7:
			strengths = append(strengths, "good "+label)
		case d.score < 0.4:
			weaknesses = append(weaknesses, "repetitive "+label)
		}
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "acceptable overall variety")
	}
	if len(weaknesses) == 0 && score.OverallScore < 0.6 {
		weaknesses = append(weaknesses, "could be more diverse than recent meals")
	}
	return strengths, weaknesses
}

// BuildConstraints derives avoid/suggest hints from the trailing history
// window: any category covering at least 40% of the window is avoided, and
// proteins seen fewer than twice are suggested.
func (s *DiversityService) BuildConstraints(history []model.RecipeMemory, windowSize int) DiversityConstraints {
	window := trailing(history, windowSize)
	constraints := DiversityConstraints{}
	if len(window) == 0 {
		return constraints
	}

	cuisines := map[string]int{}
	proteins := map[string]int{}
	methods := map[string]int{}
	for _, rec := range window {
		if c := normalizeCuisine(rec.Metadata.Cuisine); c != "" {
			cuisines[c]++
		}
		if p := normalizeProtein(rec.Metadata.PrimaryProtein); p != "" {
			proteins[p]++
		}
		if m := normalizeMethod(rec.Metadata.CookingMethod); m != "" {
			methods[m]++
		}
	}

	avoidAt := 0.4 * float64(len(window))
	for p, n := range proteins {
		if float64(n) >= avoidAt {
			constraints.AvoidProteins = append(constraints.AvoidProteins, p)
		}
	}
	for m, n := range methods {
		if float64(n) >= avoidAt {
			constraints.AvoidMethods = append(constraints.AvoidMethods, m)
		}
	}
	for _, p := range suggestableProteins {
		if proteins[p] < 2 {
			constraints.SuggestProteins = append(constraints.SuggestProteins, p)
		}
	}

	if s.cuisineConstraints {
		for c, n := range cuisines {
			if float64(n) >= avoidAt {
				constraints.AvoidCuisines = append(constraints.AvoidCuisines, c)
			}
		}
	}
	return constraints
}

// trailing returns the first n records of a newest-first history slice.
func trailing(history []model.RecipeMemory, n int) []model.RecipeMemory {
	if len(history) <= n {
		return history
	}
	return history[:n]
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
