package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// batchSize keeps multi-row inserts well under the Postgres parameter limit.
const batchSize = 1000

// ClimateRepository publishes generated datasets to the warehouse. The
// dashboard never reads them back.
type ClimateRepository interface {
	SaveGeneration(ctx context.Context, ds *models.Dataset) (string, error)
	HealthCheck(ctx context.Context) error
}

// Generation is one published dataset
type Generation struct {
	ID          string    `db:"id"`
	Seed        int64     `db:"seed"`
	UpperBound  int       `db:"upper_bound"`
	GeneratedAt time.Time `db:"generated_at"`
	PublishedAt time.Time `db:"published_at"`
}

type TemperatureRow struct {
	GenerationID string `db:"generation_id"`
	models.TemperaturePoint
}

type CO2Row struct {
	GenerationID string `db:"generation_id"`
	models.CO2Point
}

type SeaLevelRow struct {
	GenerationID string `db:"generation_id"`
	models.SeaLevelPoint
}

const (
	insertGenerationQuery = `
		INSERT INTO climate_generations (id, seed, upper_bound, generated_at, published_at)
		VALUES (:id, :seed, :upper_bound, :generated_at, :published_at)`

	insertTemperatureQuery = `
		INSERT INTO temperature_anomalies (generation_id, year, region, anomaly)
		VALUES (:generation_id, :year, :region, :anomaly)`

	insertCO2Query = `
		INSERT INTO co2_concentrations (generation_id, year, concentration)
		VALUES (:generation_id, :year, :concentration)`

	insertSeaLevelQuery = `
		INSERT INTO sea_level_rise (generation_id, year, rise)
		VALUES (:generation_id, :year, :rise)`
)

type climateRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewClimateRepository creates a new climate repository
func NewClimateRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ClimateRepository {
	return &climateRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewGeneration stamps a dataset with a fresh generation id.
func NewGeneration(ds *models.Dataset, publishedAt time.Time) Generation {
	return Generation{
		ID:          uuid.NewString(),
		Seed:        int64(ds.Seed),
		UpperBound:  ds.UpperBound,
		GeneratedAt: ds.GeneratedAt,
		PublishedAt: publishedAt,
	}
}

// SaveGeneration writes the dataset and its three tables in one transaction
// and returns the new generation id.
func (r *climateRepository) SaveGeneration(ctx context.Context, ds *models.Dataset) (string, error) {
	gen := NewGeneration(ds, r.now())
	start := time.Now()

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.db.NamedExecTx(ctx, tx, "insert_generation", insertGenerationQuery, gen); err != nil {
			return fmt.Errorf("failed to insert generation: %w", err)
		}
		if err := insertBatches(ctx, r.db, tx, "insert_temperature", insertTemperatureQuery, TemperatureRows(gen.ID, ds.Temperature)); err != nil {
			return fmt.Errorf("failed to insert temperature rows: %w", err)
		}
		if err := insertBatches(ctx, r.db, tx, "insert_co2", insertCO2Query, CO2Rows(gen.ID, ds.CO2)); err != nil {
			return fmt.Errorf("failed to insert co2 rows: %w", err)
		}
		if err := insertBatches(ctx, r.db, tx, "insert_sea_level", insertSeaLevelQuery, SeaLevelRows(gen.ID, ds.SeaLevel)); err != nil {
			return fmt.Errorf("failed to insert sea level rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug(ctx, "[REPO_SAVE_GENERATION] Generation saved", logging.Fields{
		"generation_id":    gen.ID,
		"upper_bound":      gen.UpperBound,
		"temperature_rows": len(ds.Temperature),
		"co2_rows":         len(ds.CO2),
		"sea_level_rows":   len(ds.SeaLevel),
		"duration_ms":      time.Since(start).Milliseconds(),
	})

	return gen.ID, nil
}

// HealthCheck performs a repository health check
func (r *climateRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func insertBatches[T any](ctx context.Context, db *database.PostgresDB, tx *sqlx.Tx, queryType, query string, rows []T) error {
	for _, batch := range Chunk(rows, batchSize) {
		if _, err := db.NamedExecTx(ctx, tx, queryType, query, batch); err != nil {
			return err
		}
	}
	return nil
}

// Chunk splits rows into consecutive batches of at most size elements.
func Chunk[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = len(rows)
	}
	var out [][]T
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// TemperatureRows tags temperature points with a generation id.
func TemperatureRows(generationID string, points []models.TemperaturePoint) []TemperatureRow {
	rows := make([]TemperatureRow, len(points))
	for i, p := range points {
		rows[i] = TemperatureRow{GenerationID: generationID, TemperaturePoint: p}
	}
	return rows
}

// CO2Rows tags CO2 points with a generation id.
func CO2Rows(generationID string, points []models.CO2Point) []CO2Row {
	rows := make([]CO2Row, len(points))
	for i, p := range points {
		rows[i] = CO2Row{GenerationID: generationID, CO2Point: p}
	}
	return rows
}

// SeaLevelRows tags sea level points with a generation id.
func SeaLevelRows(generationID string, points []models.SeaLevelPoint) []SeaLevelRow {
	rows := make([]SeaLevelRow, len(points))
	for i, p := range points {
		rows[i] = SeaLevelRow{GenerationID: generationID, SeaLevelPoint: p}
	}
	return rows
}
