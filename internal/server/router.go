package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/auth"
	"github.com/infinityfire/api/internal/checklist"
	"github.com/infinityfire/api/internal/compliance"
	"github.com/infinityfire/api/internal/config"
	"github.com/infinityfire/api/internal/file"
	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/metrics"
	"github.com/infinityfire/api/internal/objectstore"
	"github.com/infinityfire/api/internal/ratelimit"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type bucketChecker interface {
	BucketInfo(ctx context.Context) objectstore.BucketInfo
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config            config.Config
	DB                pinger
	Objects           bucketChecker
	Limiter           *ratelimit.Limiter
	AuthService       *auth.Service
	FileService       *file.Service
	ActivityService   *activity.Service
	ComplianceService *compliance.Service
	ChecklistService  *checklist.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.Config.HTTP)))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/api")
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Middleware())
	}
	api.GET("/health", apiHealth)

	if deps.AuthService == nil {
		return router
	}
	auth.RegisterRoutes(api, deps.AuthService)

	protected := api.Group("", auth.AuthMiddleware(deps.AuthService))
	if deps.FileService != nil {
		file.RegisterRoutes(protected.Group("/files"), deps.FileService)
	}
	if deps.ComplianceService != nil {
		compliance.RegisterRoutes(protected.Group("/tests"), deps.ComplianceService)
	}
	if deps.ChecklistService != nil {
		checklist.RegisterRoutes(protected.Group("/venue-checklists"), deps.ChecklistService)
	}

	admin := protected.Group("/admin", auth.RequireAdmin())
	auth.RegisterAdminRoutes(admin, deps.AuthService)
	if deps.ActivityService != nil {
		activity.RegisterAdminRoutes(admin, deps.ActivityService)
	}

	return router
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	return cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.CorrelationIDHeader},
		ExposeHeaders:    []string{logger.CorrelationIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
