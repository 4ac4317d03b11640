package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/router"
)

// Server represents the HTTP server
type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New creates a new server instance with all routes wired.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) (*Server, error) {
	engine, err := router.SetupRouter(db, redisClient, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
			Handler: engine,
		},
		logger: logger,
	}, nil
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the underlying engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
