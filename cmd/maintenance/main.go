package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/database"
	"github.com/plateful/backend/internal/service"
)

// The maintenance binary runs the scheduled jobs: retention cleanup of
// old recipe memories and the nightly diversity metrics aggregation.
// It is meant to be invoked from cron; each run does its work and exits.
func main() {
	cleanup := flag.Bool("cleanup", false, "delete recipe memories past the retention window")
	aggregate := flag.Bool("aggregate", false, "recalculate diversity metrics for all users")
	retentionDays := flag.Int("retention-days", 0, "override the configured retention window")
	flag.Parse()

	if !*cleanup && !*aggregate {
		log.Fatal("nothing to do: pass -cleanup and/or -aggregate")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	memoryService := service.NewMemoryService(db)
	metricsService := service.NewMetricsService(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if *cleanup {
		days := *retentionDays
		if days <= 0 {
			days = cfg.RecipeRetentionDays
		}
		runCleanup(ctx, memoryService, days, logger)
	}

	if *aggregate {
		analytics := service.NewAnalyticsService(memoryService, metricsService, cfg.MetricsWindowDays, logger)
		report, err := analytics.AggregateAllUsers(ctx)
		if err != nil {
			logger.Fatal("aggregation failed", zap.Error(err))
		}
		logger.Info("aggregation finished",
			zap.Int("processed", report.Processed),
			zap.Int("failed", report.Failed))
	}
}

func runCleanup(ctx context.Context, store *service.MemoryService, retentionDays int, logger *zap.Logger) {
	userIDs, err := store.ListUserIDs(ctx)
	if err != nil {
		logger.Fatal("failed to list users", zap.Error(err))
	}

	var total int64
	for _, userID := range userIDs {
		deleted, err := store.CleanupOldRecipes(ctx, userID, retentionDays)
		if err != nil {
			logger.Error("cleanup failed for user",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		total += deleted
	}

	logger.Info("cleanup finished",
		zap.Int("users", len(userIDs)),
		zap.Int("retention_days", retentionDays),
		zap.Int64("deleted", total))
}
