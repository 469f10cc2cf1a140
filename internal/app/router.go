package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"fleet/internal/handler"
	"fleet/internal/metrics"
	"fleet/internal/middleware"
	"fleet/internal/service"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler      *handler.TripHandler
	ReferenceHandler *handler.ReferenceHandler
	RedisClient      *redis.Client
	Idempotency      middleware.IdempotencyOptions
	NewRelicApp      *newrelic.Application
	AllowedOrigins   []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins...))
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Idempotency))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint.
	metrics.RegisterDefault()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.GetAll)
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("/stats", deps.TripHandler.Stats)
			trips.GET("/export", deps.TripHandler.Export)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.PUT("/:id", deps.TripHandler.UpdateTrip)
			trips.DELETE("/:id", deps.TripHandler.DeleteTrip)
			trips.POST("/:id/start", deps.TripHandler.ChangeStatus(service.ActionStart))
			trips.POST("/:id/pause", deps.TripHandler.ChangeStatus(service.ActionPause))
			trips.POST("/:id/complete", deps.TripHandler.ChangeStatus(service.ActionComplete))
			trips.POST("/:id/cancel", deps.TripHandler.ChangeStatus(service.ActionCancel))
			trips.POST("/:id/schedule", deps.TripHandler.ChangeStatus(service.ActionSchedule))
			trips.POST("/:id/progress", deps.TripHandler.UpdateProgress)
			trips.POST("/:id/settle", deps.TripHandler.SettlePayment)
		}

		// Reference data routes.
		v1.GET("/drivers", deps.ReferenceHandler.ListDrivers)
		v1.GET("/vehicles", deps.ReferenceHandler.ListVehicles)
		v1.GET("/routes", deps.ReferenceHandler.ListRoutes)
	}

	return router
}
