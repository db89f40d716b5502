package server

import (
	"context"
	"net/http"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck names a dependency probed by /health/ready.
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

func registerHealthRoutes(router *gin.Engine, checks []HealthCheck) {
	router.GET("/health/live", func(c *gin.Context) {
		apperr.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		for _, check := range checks {
			if err := check.Pinger.Ping(ctx); err != nil {
				logger.FromContext(ctx).Warn("readiness check failed", zap.String("component", check.Name), zap.Error(err))
				apperr.JSON(c, http.StatusServiceUnavailable, gin.H{
					"status":    "degraded",
					"component": check.Name,
				})
				return
			}
		}

		apperr.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	})
}
