package server

import (
	"net/http"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/auth"
	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
	"github.com/abduss/filevault/internal/resource"
	"github.com/abduss/filevault/internal/share"
	"github.com/abduss/filevault/internal/summarize"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies groups the services required by the HTTP router. Nil services
// leave their routes unmounted.
type Dependencies struct {
	Config    config.Config
	Identity  auth.IdentityResolver
	Files     *file.Service
	Shares    *share.Handler
	Resources *resource.Service
	Summaries *summarize.Service
	Checks    []HealthCheck
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(recoverJSON))
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", logger.CorrelationIDHeader},
		ExposeHeaders:   []string{"Content-Length", logger.CorrelationIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	registerHealthRoutes(router, deps.Checks)
	if deps.Config.Metrics.PrometheusPath != "" {
		metrics.Register(router, deps.Config.Metrics.PrometheusPath)
	}

	router.NoRoute(func(c *gin.Context) {
		apperr.JSON(c, http.StatusNotFound, apperr.Body{Error: "Not found"})
	})

	if deps.Shares != nil {
		public := router.Group("/")
		public.Use(newIPRateLimiter(deps.Config.RateLimit).Middleware())
		deps.Shares.RegisterPublicRoutes(public)
	}

	if deps.Identity == nil {
		return router
	}

	protected := router.Group("/")
	protected.Use(auth.Middleware(deps.Identity))
	if deps.Files != nil {
		file.RegisterRoutes(protected, deps.Files)
	}
	if deps.Shares != nil {
		deps.Shares.RegisterRoutes(protected)
	}
	if deps.Resources != nil {
		resource.RegisterRoutes(protected, deps.Resources)
	}
	if deps.Summaries != nil {
		summarize.RegisterRoutes(protected, deps.Summaries)
	}

	return router
}

func recoverJSON(c *gin.Context, recovered any) {
	logger.FromContext(c.Request.Context()).Error("panic recovered", zap.Any("panic", recovered), zap.Stack("stack"))
	apperr.JSON(c, http.StatusInternalServerError, apperr.Body{Error: "Internal server error"})
	c.Abort()
}
