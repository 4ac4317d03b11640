package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/backend/internal/model"
)

// Request-level defaults, overridable per request and per meal-type
// category.
const (
	DefaultMaxRetries = 3
	DefaultWindowDays = 14

	// constraintWindowSize is how much history feeds BuildConstraints.
	constraintWindowSize = 10

	// notesEmbeddingLimit caps how much of the notes text joins the
	// embedding input alongside the name.
	notesEmbeddingLimit = 200
)

// CategoryThresholds tunes acceptance per meal-type category. Values are
// empirically tuned product data; changing them needs product input.
type CategoryThresholds struct {
	SimilarityThreshold float64
	DiversityThreshold  float64
	QualityBar          float64
}

// OrchestratorConfig carries the request defaults and the per-category
// override table.
type OrchestratorConfig struct {
	MaxRetries          int
	SimilarityThreshold float64
	DiversityThreshold  float64
	WindowDays          int
	CategoryOverrides   map[string]CategoryThresholds
}

// DefaultOrchestratorConfig returns production tuning. Categories with
// naturally low variety (breakfast, salads) get looser thresholds;
// categories expected to vary widely (dinner, desserts) get tighter ones.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxRetries:          DefaultMaxRetries,
		SimilarityThreshold: DefaultSimilarityThreshold,
		DiversityThreshold:  DefaultDiversityThreshold,
		WindowDays:          DefaultWindowDays,
		CategoryOverrides: map[string]CategoryThresholds{
			"breakfast": {SimilarityThreshold: 0.90, DiversityThreshold: 0.50, QualityBar: 0.45},
			"salad":     {SimilarityThreshold: 0.90, DiversityThreshold: 0.50, QualityBar: 0.45},
			"snack":     {SimilarityThreshold: 0.88, DiversityThreshold: 0.55, QualityBar: 0.50},
			"dinner":    {SimilarityThreshold: 0.82, DiversityThreshold: 0.65, QualityBar: 0.60},
			"dessert":   {SimilarityThreshold: 0.82, DiversityThreshold: 0.65, QualityBar: 0.60},
		},
	}
}

// GenerateRequest is one generation request. MealType, StyleType, UserID
// and ConversationID are required; the rest default from config.
type GenerateRequest struct {
	MealType       string
	StyleType      string
	UserID         string
	ConversationID string

	MaxRetries          int
	SimilarityThreshold float64
	TemporalWindowDays  int
}

// GenerationMetadata describes how an accepted recipe was produced.
type GenerationMetadata struct {
	Attempts             int     `json:"attempts"`
	WasRetried           bool    `json:"was_retried"`
	SimilarityScore      float64 `json:"similarity_score"`
	LatencyMs            int64   `json:"latency_ms"`
	RecentRecipesChecked int     `json:"recent_recipes_checked"`
}

// GenerateResult is the success outcome: the persisted recipe plus its
// generation metadata.
type GenerateResult struct {
	Recipe   *model.RecipeMemory
	Metadata GenerationMetadata
}

// GenerationOrchestrator runs the accept-or-retry generation loop. All
// collaborators are explicit dependencies so the loop is testable with
// mocks and carries no global state.
type GenerationOrchestrator struct {
	store      RecipeMemoryStore
	generator  RecipeGenerator
	embedder   TextEmbedder
	similarity *SimilarityService
	diversity  *DiversityService
	cfg        OrchestratorConfig
	logger     *zap.Logger
}

func NewGenerationOrchestrator(
	store RecipeMemoryStore,
	generator RecipeGenerator,
	embedder TextEmbedder,
	similarity *SimilarityService,
	diversity *DiversityService,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *GenerationOrchestrator {
	return &GenerationOrchestrator{
		store:      store,
		generator:  generator,
		embedder:   embedder,
		similarity: similarity,
		diversity:  diversity,
		cfg:        cfg,
		logger:     logger,
	}
}

// attemptTemperature increases generation entropy per retry: 0.7, 0.9,
// 1.1. A rejected draft means the model is stuck on the same idea, so the
// next attempt keeps the constraint hints but rolls with more randomness.
func attemptTemperature(attempt int) float64 {
	return 0.5 + 0.2*float64(attempt)
}

// Generate runs up to maxRetries sequential attempts, accepting the first
// candidate that is neither too similar to history nor below the
// diversity threshold. Nothing is persisted for rejected attempts; on
// exhaustion the last draft is discarded and a DiversityExhaustionError
// is returned.
func (o *GenerationOrchestrator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = o.cfg.MaxRetries
	}
	windowDays := req.TemporalWindowDays
	if windowDays <= 0 {
		windowDays = o.cfg.WindowDays
	}
	similarityThreshold := req.SimilarityThreshold
	if similarityThreshold <= 0 {
		similarityThreshold = o.cfg.SimilarityThreshold
	}
	diversityThreshold := o.cfg.DiversityThreshold

	if overrides, ok := o.cfg.CategoryOverrides[strings.ToLower(req.MealType)]; ok {
		similarityThreshold = overrides.SimilarityThreshold
		diversityThreshold = overrides.DiversityThreshold
		if req.SimilarityThreshold > 0 {
			similarityThreshold = req.SimilarityThreshold
		}
	}

	recent, err := o.store.GetRecentRecipes(ctx, req.UserID, windowDays)
	if err != nil {
		return nil, err
	}

	// Constraints and history are fixed for the life of this request;
	// only the temperature varies between attempts.
	var constraints *DiversityConstraints
	if len(recent) > 0 {
		c := o.diversity.BuildConstraints(recent, constraintWindowSize)
		constraints = &c
	}

	var lastCheck SimilarityCheck
	var lastScore DiversityScore

	for attempt := 1; attempt <= maxRetries; attempt++ {
		temperature := attemptTemperature(attempt)

		draft, err := o.generator.GenerateRecipe(ctx, req.MealType, req.StyleType, constraints, temperature)
		if err != nil {
			return nil, &GeneratorError{Err: err}
		}
		if draft == nil {
			return nil, &GeneratorError{Err: errEmptyDraft}
		}

		embedding, err := o.embedder.Embed(ctx, embeddingInput(draft))
		if err != nil {
			return nil, &GeneratorError{Err: err}
		}

		lastCheck = o.similarity.CheckSimilarity(embedding, recent, similarityThreshold)
		lastScore = o.diversity.CalculateDiversityScore(draft, recent, lastCheck.MaxSimilarity)

		if !lastCheck.IsSimilar && lastScore.OverallScore >= diversityThreshold {
			memory, err := o.store.SaveRecipeMemory(ctx, SaveRecipeMemoryParams{
				UserID:          req.UserID,
				ConversationID:  req.ConversationID,
				Draft:           *draft,
				Embedding:       embedding,
				EmbeddingModel:  o.embedder.Model(),
				AcceptedAttempt: attempt,
				WasRetried:      attempt > 1,
				SimilarityScore: lastCheck.MaxSimilarity,
			})
			if err != nil {
				return nil, err
			}

			o.logger.Info("recipe accepted",
				zap.String("user_id", req.UserID),
				zap.String("recipe_id", memory.ID.String()),
				zap.Int("attempt", attempt),
				zap.Float64("similarity", lastCheck.MaxSimilarity),
				zap.Float64("diversity", lastScore.OverallScore))

			return &GenerateResult{
				Recipe: memory,
				Metadata: GenerationMetadata{
					Attempts:             attempt,
					WasRetried:           attempt > 1,
					SimilarityScore:      lastCheck.MaxSimilarity,
					LatencyMs:            time.Since(start).Milliseconds(),
					RecentRecipesChecked: len(recent),
				},
			}, nil
		}

		o.logger.Info("recipe rejected",
			zap.String("user_id", req.UserID),
			zap.Int("attempt", attempt),
			zap.Bool("too_similar", lastCheck.IsSimilar),
			zap.Float64("similarity", lastCheck.MaxSimilarity),
			zap.Float64("similarity_threshold", similarityThreshold),
			zap.Float64("diversity", lastScore.OverallScore),
			zap.Float64("diversity_threshold", diversityThreshold),
			zap.Strings("weaknesses", lastScore.Weaknesses))
	}

	return nil, &DiversityExhaustionError{
		Attempts:            maxRetries,
		MaxSimilarity:       lastCheck.MaxSimilarity,
		SimilarityThreshold: similarityThreshold,
		DiversityScore:      lastScore.OverallScore,
		DiversityThreshold:  diversityThreshold,
		Weaknesses:          lastScore.Weaknesses,
		Suggestions: []string{
			"try a different meal type or style",
			"retry in a little while for a fresh result",
		},
	}
}

var errEmptyDraft = errors.New("generator returned no draft")

func validateRequest(req GenerateRequest) error {
	switch {
	case req.MealType == "":
		return &ValidationError{Field: "meal_type"}
	case req.StyleType == "":
		return &ValidationError{Field: "style_type"}
	case req.UserID == "":
		return &ValidationError{Field: "user_id"}
	case req.ConversationID == "":
		return &ValidationError{Field: "conversation_id"}
	}
	return nil
}

// embeddingInput builds the short text the embedder sees: the name plus
// the start of the notes. Notes are cut on rune boundaries; accented and
// non-Latin text must not end in a broken byte sequence.
func embeddingInput(draft *model.RecipeDraft) string {
	notes := draft.Notes
	if runes := []rune(notes); len(runes) > notesEmbeddingLimit {
		notes = string(runes[:notesEmbeddingLimit])
	}
	if notes == "" {
		return draft.Name
	}
	return draft.Name + " " + notes
}
