package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"climate-dashboard/internal/config"
	"climate-dashboard/internal/generator"
	"climate-dashboard/internal/handlers"
	"climate-dashboard/internal/repository"
	"climate-dashboard/internal/scheduler"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("climate-dashboard", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting climate dashboard server", logging.Fields{
		"version":           "1.0.0",
		"server_host":       cfg.Server.Host,
		"server_port":       cfg.Server.Port,
		"warehouse_enabled": cfg.Warehouse.Enabled,
		"regen_interval":    cfg.Scheduler.RegenerateInterval.String(),
	})

	metricsCollector := metrics.NewCollector("climate_dashboard")

	regions, err := cfg.Dashboard.Regions()
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Invalid default regions", logging.Fields{}, err)
	}

	gen := generator.New(logger, metricsCollector, generator.WithSeed(cfg.Dashboard.Seed))

	// Initialize services
	dashboardService := services.NewDashboardService(gen, services.DashboardOptions{
		DefaultStartYear: cfg.Dashboard.DefaultStartYear,
		DefaultRegions:   regions,
		ProjectionRate:   cfg.Dashboard.ProjectionRate,
		ProjectionTarget: cfg.Dashboard.ProjectionTarget,
	}, logger, metricsCollector)
	exportService := services.NewExportService(gen, logger, metricsCollector)
	chartService := services.NewChartService(dashboardService, logger, metricsCollector)

	// Optional warehouse
	var (
		warehouse handlers.WarehousePublisher
		scheduled scheduler.Publisher
	)
	if cfg.Warehouse.Enabled {
		db, err := database.NewPostgresDB(&database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Database,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}, logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to warehouse", logging.Fields{}, err)
		}
		defer db.Close()

		repo := repository.NewClimateRepository(db, logger, metricsCollector)
		publisher := services.NewPublisher(repo, services.PublisherOptions{
			Timeout:     cfg.Warehouse.PublishTimeout,
			MaxFailures: cfg.Warehouse.MaxFailures,
			OpenTimeout: cfg.Warehouse.OpenTimeout,
		}, logger, metricsCollector)
		warehouse = publisher
		scheduled = publisher
	}

	// Warm the cache so the first request does not pay for generation
	ds := gen.Dataset(ctx)
	if scheduled != nil {
		if _, err := scheduled.Publish(ctx, ds); err != nil {
			logger.Warn(ctx, "[STARTUP_PUBLISH_ERROR] Initial dataset not published", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	regen := scheduler.New(gen, scheduled, cfg.Scheduler.RegenerateInterval, logger)
	if err := regen.Start(); err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to start scheduler", logging.Fields{}, err)
	}
	defer regen.Stop()

	climateHandler := handlers.NewClimateHandler(dashboardService, exportService, chartService, gen, warehouse, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	router.Use(handlers.RequestID, handlers.Instrument(metricsCollector))
	climateHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
