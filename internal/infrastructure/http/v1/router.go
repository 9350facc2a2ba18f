// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"dice/internal/domain/feed"
	"dice/internal/infrastructure/http/v1/handlers"
	"dice/internal/infrastructure/http/v1/middleware"
	"dice/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Feed serves every dashboard feed
	Feed *feed.Service

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator identifies callers; nil leaves every request anonymous
	JWTValidator middleware.JWTValidator

	// RequireAuth rejects requests without a valid token
	RequireAuth bool

	// HealthChecks are pinged by /health/ready
	HealthChecks map[string]handlers.Pinger

	// DefaultPageSize applies when a request names no page size
	DefaultPageSize int
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	switch {
	case cfg.RequireAuth && cfg.JWTValidator != nil:
		v1.Use(middleware.Auth(cfg.JWTValidator))
	case cfg.JWTValidator != nil:
		v1.Use(middleware.OptionalAuth(cfg.JWTValidator))
	}

	base := handlers.NewBaseHandler()
	handlers.NewFeedHandler(base, cfg.Feed, cfg.DefaultPageSize).RegisterRoutes(v1)

	return router
}
