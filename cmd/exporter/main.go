package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"climate-dashboard/internal/config"
	"climate-dashboard/internal/export"
	"climate-dashboard/internal/generator"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/repository"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

func main() {
	// Parse command-line flags
	outDir := flag.String("out", "./exports", "Directory to write the exported files to")
	start := flag.Int("start", 0, "First year to export (default: configured start year)")
	end := flag.Int("end", 0, "Last year to export (default: latest year with data)")
	regionList := flag.String("regions", "", "Comma separated regions (default: configured regions)")
	formatName := flag.String("format", "csv", "Export format: csv or xlsx")
	publish := flag.Bool("publish", false, "Also publish the generated dataset to the warehouse")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("climate-exporter", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[EXPORTER_START] Starting climate data export", logging.Fields{
		"version": "1.0.0",
		"out":     *outDir,
		"format":  *formatName,
		"publish": *publish,
	})

	metricsCollector := metrics.NewCollector("climate_exporter")

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		logger.Fatal(ctx, "[EXPORTER_ERROR] Invalid format", logging.Fields{}, err)
	}

	defaults, err := cfg.Dashboard.Regions()
	if err != nil {
		logger.Fatal(ctx, "[EXPORTER_ERROR] Invalid default regions", logging.Fields{}, err)
	}

	gen := generator.New(logger, metricsCollector, generator.WithSeed(cfg.Dashboard.Seed))
	dashboardService := services.NewDashboardService(gen, services.DashboardOptions{
		DefaultStartYear: cfg.Dashboard.DefaultStartYear,
		DefaultRegions:   defaults,
		ProjectionRate:   cfg.Dashboard.ProjectionRate,
		ProjectionTarget: cfg.Dashboard.ProjectionTarget,
	}, logger, metricsCollector)
	exportService := services.NewExportService(gen, logger, metricsCollector)

	ds := gen.Dataset(ctx)
	q := dashboardService.DefaultQuery(ds)
	if *start != 0 {
		q.Range.Start = *start
	}
	if *end != 0 {
		q.Range.End = *end
	}
	if *regionList != "" {
		if q.Regions, err = models.ParseRegionSelection(*regionList); err != nil {
			logger.Fatal(ctx, "[EXPORTER_ERROR] Invalid regions", logging.Fields{}, err)
		}
	}

	started := time.Now()
	downloads, err := exportService.ExportAll(ctx, format, q)
	if err != nil {
		logger.Fatal(ctx, "[EXPORTER_ERROR] Export failed", logging.Fields{
			"range": q.Range.String(),
		}, err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal(ctx, "[EXPORTER_ERROR] Failed to create output directory", logging.Fields{}, err)
	}
	for _, dl := range downloads {
		path := filepath.Join(*outDir, dl.FileName)
		if err := os.WriteFile(path, dl.Body, 0o644); err != nil {
			logger.Fatal(ctx, "[EXPORTER_ERROR] Failed to write export", logging.Fields{"path": path}, err)
		}
	}

	view, err := dashboardService.Build(ctx, q)
	if err != nil {
		logger.Fatal(ctx, "[EXPORTER_ERROR] Failed to summarize dataset", logging.Fields{}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("EXPORT COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Year Range:         %s\n", q.Range)
	fmt.Printf("Seed:               %d\n", ds.Seed)
	for _, dl := range downloads {
		fmt.Printf("%-20s%d rows\n", dl.FileName+":", dl.Rows)
	}
	fmt.Printf("Duration:           %v\n", time.Since(started))

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("KEY CLIMATE INDICATORS")
	fmt.Println(strings.Repeat("=", 80))
	for _, card := range view.Cards {
		detail := card.Delta
		if !card.Available {
			detail = card.Note
		}
		fmt.Printf("%-28s%-16s%s\n", card.Title+":", card.Value, detail)
	}
	for _, n := range view.Notices {
		fmt.Printf("  - [%s] %s\n", n.Section, n.Message)
	}

	if *publish {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("PUBLISHING TO WAREHOUSE")
		fmt.Println(strings.Repeat("=", 80))

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
			logger.Fatal(ctx, "[EXPORTER_ERROR] Failed to connect to warehouse", logging.Fields{}, err)
		}
		defer db.Close()

		publisher := services.NewPublisher(repository.NewClimateRepository(db, logger, metricsCollector), services.PublisherOptions{
			Timeout:     cfg.Warehouse.PublishTimeout,
			MaxFailures: cfg.Warehouse.MaxFailures,
			OpenTimeout: cfg.Warehouse.OpenTimeout,
		}, logger, metricsCollector)

		id, err := publisher.Publish(ctx, ds)
		if err != nil {
			logger.Error(ctx, "[PUBLISH_ERROR] Warehouse publish failed", logging.Fields{}, err)
			fmt.Printf("Publish failed: %v\n", err)
		} else {
			fmt.Printf("Published generation %s\n", id)
		}
	}

	logger.Info(ctx, "[EXPORTER_COMPLETE] Export completed successfully", logging.Fields{
		"files":            len(downloads),
		"range":            q.Range.String(),
		"duration_seconds": time.Since(started).Seconds(),
	})
}
