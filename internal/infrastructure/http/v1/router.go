// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"tabula/internal/domain/tabular"
	"tabula/internal/infrastructure/cache"
	"tabula/internal/infrastructure/http/v1/handlers"
	"tabula/internal/infrastructure/http/v1/middleware"
	"tabula/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Cache shares parsed resources across requests. May be nil.
	Cache cache.Backend

	// Resolver translates resource ids into fetch locations. May be nil.
	Resolver tabular.ResourceResolver

	// CacheTTL bounds how long a parsed resource is reused.
	CacheTTL time.Duration

	// FetchTimeout bounds remote resource fetches.
	FetchTimeout time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Cache)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	resourcesHandler := handlers.NewResourcesHandler(cfg.Cache, cfg.Resolver, cfg.CacheTTL, cfg.FetchTimeout)
	v1 := router.Group("/api/v1")
	{
		resources := v1.Group("/resources")
		{
			resources.GET("/data", resourcesHandler.Data)
			resources.GET("/columns", resourcesHandler.Columns)
		}
	}

	return router
}
