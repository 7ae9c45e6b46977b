package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-type-predictor/internal/api/http"
	"github.com/i474232898/weather-type-predictor/internal/artifact"
	"github.com/i474232898/weather-type-predictor/internal/config"
	"github.com/i474232898/weather-type-predictor/internal/metrics"
	"github.com/i474232898/weather-type-predictor/internal/scheduler"
	"github.com/i474232898/weather-type-predictor/internal/store"
	"github.com/i474232898/weather-type-predictor/internal/weather"
)

func main() {
	// Load configuration (also reads .env if present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Remote scoring replaces the model file named in the manifest.
	var remoteModel weather.Model
	if cfg.ModelBackend == config.BackendRemote {
		httpClient := &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
		remoteModel, err = artifact.NewRemoteModel(httpClient, cfg.ModelEndpoint, cfg.ModelFeatures)
		if err != nil {
			log.Fatalf("failed to configure remote model: %v", err)
		}
	}

	// Artifacts are loaded once and shared read-only by every request.
	arts, err := artifact.Load(artifact.Options{
		Dir:          cfg.ArtifactDir,
		ManifestFile: cfg.ArtifactManifest,
		Model:        remoteModel,
	})
	if err != nil {
		log.Fatalf("failed to load artifacts: %v", err)
	}

	predictor, err := weather.NewPredictor(arts)
	if err != nil {
		log.Fatalf("failed to build predictor: %v", err)
	}

	recorder := metrics.NewPrometheusRecorder()
	service := weather.NewService(predictor, recorder)

	// Generated CSV files wait here until downloaded or expired.
	exports := store.NewMemoryStore(cfg.ExportMaxEntries, cfg.ExportMaxAge)

	sched := scheduler.New(exports, cfg.ExportPurgeInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-type-predictor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-type-predictor",
			"model":   service.ModelName(),
			"classes": service.Classes(),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, service, httpapi.Options{
		Exports:        exports,
		Metrics:        recorder,
		PredictTimeout: cfg.HTTPTimeout,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
