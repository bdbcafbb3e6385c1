// Package generator produces the synthetic climate tables served by the
// dashboard and memoizes them per upper-bound year.
package generator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// Formula constants for the three synthetic series.
const (
	temperatureBase    = -0.16
	temperatureTrend   = 0.008
	temperatureNoiseSD = 0.1
	co2Base            = 315.0
	co2Trend           = 1.8
	co2NoiseSD         = 2.0
	seaLevelTrend      = 3.3
	seaLevelNoiseSD    = 5.0
)

// regionMultiplier scales the global anomaly into a regional one.
func regionMultiplier(r models.Region) float64 {
	switch r {
	case models.RegionArctic:
		return 1.2
	case models.RegionSouthernHemisphere:
		return 0.9
	default:
		return 1.0
	}
}

// Generate builds the three tables for years below upperBound using rng as the
// only source of noise. Temperature rows are region-major: every Global year
// first, then each other region in models.AllRegions order. A single noise draw
// per year is shared by all regions.
func Generate(rng *rand.Rand, upperBound int) *models.Dataset {
	ds := &models.Dataset{UpperBound: upperBound}

	var global []float64
	for year := models.TemperatureStartYear; year < upperBound; year++ {
		anomaly := temperatureBase + float64(year-models.TemperatureStartYear)*temperatureTrend +
			rng.NormFloat64()*temperatureNoiseSD
		global = append(global, anomaly)
	}

	ds.Temperature = make([]models.TemperaturePoint, 0, len(global)*len(models.AllRegions))
	for _, region := range models.AllRegions {
		m := regionMultiplier(region)
		for i, base := range global {
			ds.Temperature = append(ds.Temperature, models.TemperaturePoint{
				Year:    models.TemperatureStartYear + i,
				Anomaly: base * m,
				Region:  region,
			})
		}
	}

	for year := models.CO2StartYear; year < upperBound; year++ {
		ds.CO2 = append(ds.CO2, models.CO2Point{
			Year:          year,
			Concentration: co2Base + float64(year-models.CO2StartYear)*co2Trend + rng.NormFloat64()*co2NoiseSD,
		})
	}

	for year := models.SeaLevelStartYear; year < upperBound; year++ {
		ds.SeaLevel = append(ds.SeaLevel, models.SeaLevelPoint{
			Year: year,
			Rise: float64(year-models.SeaLevelStartYear)*seaLevelTrend + rng.NormFloat64()*seaLevelNoiseSD,
		})
	}

	return ds
}

// NewRand returns the deterministic random source used for a given seed and
// upper bound.
func NewRand(seed uint64, upperBound int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(upperBound)))
}

// Generator memoizes generated datasets per upper bound. A Generator is safe
// for concurrent use; the datasets it returns are shared and must not be
// modified.
type Generator struct {
	mu      sync.Mutex
	cache   map[int]*models.Dataset
	seed    uint64
	clock   clockwork.Clock
	logger  *logging.ContextLogger
	metrics *metrics.Collector
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used to derive the current year and seeds.
func WithClock(c clockwork.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithSeed fixes the random seed. Zero means a fresh seed is drawn from the
// clock on every generation.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// New creates a Generator.
func New(logger *logging.StructuredLogger, metricsCollector *metrics.Collector, opts ...Option) *Generator {
	g := &Generator{
		cache:   make(map[int]*models.Dataset),
		clock:   clockwork.NewRealClock(),
		logger:  logger.WithFields(logging.Fields{"component": "generator"}),
		metrics: metricsCollector,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CurrentUpperBound returns the exclusive upper bound used by Dataset: the
// current calendar year, so the latest complete year is the last row.
func (g *Generator) CurrentUpperBound() int {
	return g.clock.Now().UTC().Year()
}

// Dataset returns the memoized dataset for the current upper bound.
func (g *Generator) Dataset(ctx context.Context) *models.Dataset {
	return g.Generate(ctx, g.CurrentUpperBound())
}

// Generate returns the memoized dataset for upperBound, generating it on the
// first call.
func (g *Generator) Generate(ctx context.Context, upperBound int) *models.Dataset {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ds, ok := g.cache[upperBound]; ok {
		g.metrics.RecordCacheLookup(true)
		return ds
	}
	g.metrics.RecordCacheLookup(false)

	ds := g.generateLocked(ctx, upperBound)
	g.cache[upperBound] = ds
	return ds
}

// Reset drops every cached dataset. The next call regenerates.
func (g *Generator) Reset(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dropped := len(g.cache)
	g.cache = make(map[int]*models.Dataset)

	g.logger.Info(ctx, "[GENERATOR_RESET] Dataset cache invalidated", logging.Fields{
		"dropped_entries": dropped,
	})
}

// Regenerate invalidates the cache and immediately rebuilds the dataset for
// the current upper bound.
func (g *Generator) Regenerate(ctx context.Context) *models.Dataset {
	g.Reset(ctx)
	g.metrics.RegenerationsTotal.Inc()
	return g.Dataset(ctx)
}

func (g *Generator) generateLocked(ctx context.Context, upperBound int) *models.Dataset {
	timer := g.metrics.NewTimer(g.metrics.GenerationDuration)

	seed := g.seed
	if seed == 0 {
		seed = uint64(g.clock.Now().UnixNano())
	}

	ds := Generate(NewRand(seed, upperBound), upperBound)
	ds.Seed = seed
	ds.GeneratedAt = g.clock.Now().UTC()

	duration := timer.ObserveDuration()
	g.metrics.GeneratedRowsTotal.WithLabelValues("temperature").Add(float64(len(ds.Temperature)))
	g.metrics.GeneratedRowsTotal.WithLabelValues("co2").Add(float64(len(ds.CO2)))
	g.metrics.GeneratedRowsTotal.WithLabelValues("sea_level").Add(float64(len(ds.SeaLevel)))
	g.metrics.DatasetUpperBoundYear.Set(float64(upperBound))

	g.logger.Info(ctx, "[GENERATOR_BUILD] Synthetic climate dataset generated", logging.Fields{
		"upper_bound":      upperBound,
		"seed":             seed,
		"temperature_rows": len(ds.Temperature),
		"co2_rows":         len(ds.CO2),
		"sea_level_rows":   len(ds.SeaLevel),
		"duration_ms":      duration.Milliseconds(),
	})

	return ds
}

// Age reports how long ago ds was generated according to the generator clock.
func (g *Generator) Age(ds *models.Dataset) time.Duration {
	return g.clock.Since(ds.GeneratedAt)
}
