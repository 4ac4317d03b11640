package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/service"
)

// SetupAPI wires the services and registers every route under /api/v1.
// All routes require authentication; generation is additionally rate
// limited when Redis is available.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) error {
	memoryService := service.NewMemoryService(db)
	metricsService := service.NewMetricsService(db)
	preferenceService := service.NewPreferenceService(db)
	similarityService := service.NewSimilarityService(logger)

	diversityService, err := service.NewDiversityService(service.DefaultScoreWeights(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize diversity service: %w", err)
	}
	llmService, err := service.NewLLMService(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize llm service: %w", err)
	}
	embeddingService, err := service.NewEmbeddingService()
	if err != nil {
		return fmt.Errorf("failed to initialize embedding service: %w", err)
	}

	orchestrator := service.NewGenerationOrchestrator(
		memoryService,
		llmService,
		embeddingService,
		similarityService,
		diversityService,
		service.DefaultOrchestratorConfig(),
		logger,
	)
	analyticsService := service.NewAnalyticsService(memoryService, metricsService, cfg.MetricsWindowDays, logger)

	var rateLimit gin.HandlerFunc
	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.GenerationRateLimit)
		rateLimit = limiter.RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		NewRecipeHandler(orchestrator, memoryService, logger).RegisterRoutes(protected, rateLimit)
		NewPreferenceHandler(preferenceService, logger).RegisterRoutes(protected)
		NewAnalyticsHandler(analyticsService, logger).RegisterRoutes(protected)
		if limiter != nil {
			registerRateLimitRoutes(protected, limiter, cfg.GenerationRateLimit)
		}
	}

	return nil
}
