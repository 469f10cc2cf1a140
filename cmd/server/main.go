package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleet/internal/app"
	"fleet/internal/config"
	"fleet/internal/handler"
	"fleet/internal/middleware"
	internalRedis "fleet/internal/redis"
	"fleet/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// PostgreSQL is only needed by the postgres backend.
	var db *sql.DB
	if cfg.Store.Backend == config.BackendPostgres {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	stores, err := app.NewStores(ctx, cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to initialize %s store: %v", cfg.Store.Backend, err)
	}
	log.Printf("Using %s trip store", cfg.Store.Backend)

	// Wire dependencies.
	server := wireServer(stores, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(stores *app.Stores, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Trip events are fanned out over Redis when it is configured.
	var publisher service.EventPublisher
	if redisClient != nil {
		publisher = internalRedis.NewPublisher(redisClient)
	}

	// Initialize services.
	notificationService := service.NewNotificationService(publisher)
	resolver := service.NewAssignmentResolver()
	lifecycle := service.NewLifecycleController(stores.Trips)
	tripService := service.NewTripService(stores.Trips, stores.Reference, lifecycle, resolver, notificationService, service.TripOptions{
		StrictAssignment: cfg.Assignment.Strict,
		Currency:         cfg.Trips.Currency,
		CreatedBy:        cfg.Trips.CreatedBy,
	})
	referenceService := service.NewReferenceService(stores.Reference, resolver)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	referenceHandler := handler.NewReferenceHandler(referenceService)

	// Create router.
	idempotency := middleware.IdempotencyOptions{
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       cfg.Redis.IdempotencyTTL,
	}
	router := app.NewRouter(app.RouterDeps{
		TripHandler:      tripHandler,
		ReferenceHandler: referenceHandler,
		RedisClient:      redisClient,
		Idempotency:      idempotency,
		NewRelicApp:      nrApp,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
