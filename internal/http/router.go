package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/metrics"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, health HealthCheck, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/vehicles", handler.listVehicles)
		protected.POST("/vehicles", handler.createVehicle)
		protected.GET("/vehicles/:id", handler.getVehicle)
		protected.PUT("/vehicles/:id", handler.updateVehicle)
		protected.DELETE("/vehicles/:id", handler.deleteVehicle)
		protected.PUT("/vehicles/:id/deadlines/:category", handler.markDeadlineDone)
		protected.POST("/vehicles/:id/history", handler.addRecord)
		protected.POST("/vehicles/:id/status", handler.transitionVehicle)
		protected.PUT("/vehicles/:id/image", handler.uploadImage)

		protected.GET("/dashboard", handler.getDashboard)
		protected.GET("/alerts", handler.listAlerts)

		protected.GET("/digest/preview", handler.previewDigest)
		protected.POST("/digest/send", handler.sendDigest)
	}

	return router
}
