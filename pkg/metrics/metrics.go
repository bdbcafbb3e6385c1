package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Generator Metrics
	GeneratorCacheTotal   *prometheus.CounterVec
	GenerationDuration    prometheus.Histogram
	GeneratedRowsTotal    *prometheus.CounterVec
	DatasetUpperBoundYear prometheus.Gauge
	RegenerationsTotal    prometheus.Counter

	// Pipeline Metrics
	PipelineDuration     prometheus.Histogram
	PipelineRowsFiltered *prometheus.HistogramVec
	PlaceholdersTotal    *prometheus.CounterVec

	// Export Metrics
	ExportsTotal       *prometheus.CounterVec
	ChartRenderSeconds *prometheus.HistogramVec

	// Warehouse Metrics
	WarehousePublishTotal *prometheus.CounterVec
	DBQueryDuration       *prometheus.HistogramVec
	DBConnectionPool      *prometheus.GaugeVec
	DBErrorsTotal         *prometheus.CounterVec
}

// NewCollector creates a collector registered with the default registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegisterer creates a collector registered with reg. Tests pass
// a fresh prometheus.NewRegistry() to avoid duplicate registration panics.
func NewCollectorWithRegisterer(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		GeneratorCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generator_cache_total",
				Help:      "Dataset cache lookups by result (hit, miss)",
			},
			[]string{"result"},
		),

		GenerationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Duration of synthetic dataset generation in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		GeneratedRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generated_rows_total",
				Help:      "Rows produced by the generator by dataset",
			},
			[]string{"dataset"},
		),

		DatasetUpperBoundYear: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_upper_bound_year",
				Help:      "Exclusive upper bound year of the most recently generated dataset",
			},
		),

		RegenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "regenerations_total",
				Help:      "Explicit cache invalidations followed by regeneration",
			},
		),

		PipelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of one filter and summarize pass in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		PipelineRowsFiltered: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_rows_filtered",
				Help:      "Rows surviving the filter stage by dataset",
				Buckets:   []float64{0, 10, 50, 100, 250, 500, 750},
			},
			[]string{"dataset"},
		),

		PlaceholdersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "placeholders_total",
				Help:      "Indicators rendered as N/A by indicator and reason",
			},
			[]string{"indicator", "reason"},
		),

		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Dataset exports by dataset and format",
			},
			[]string{"dataset", "format"},
		),

		ChartRenderSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chart_render_duration_seconds",
				Help:      "Chart rendering duration in seconds by chart",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"chart"},
		),

		WarehousePublishTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warehouse_publish_total",
				Help:      "Dataset publications to the warehouse by outcome",
			},
			[]string{"outcome"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),
	}
}

// NewTestCollector returns a collector bound to a private registry.
func NewTestCollector() *Collector {
	return NewCollectorWithRegisterer("test", prometheus.NewRegistry())
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordCacheLookup counts a generator cache hit or miss
func (c *Collector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.GeneratorCacheTotal.WithLabelValues(result).Inc()
}

// RecordPlaceholder counts an indicator that could not be computed
func (c *Collector) RecordPlaceholder(indicator, reason string) {
	c.PlaceholdersTotal.WithLabelValues(indicator, reason).Inc()
}

// RecordExport counts a dataset export
func (c *Collector) RecordExport(dataset, format string) {
	c.ExportsTotal.WithLabelValues(dataset, format).Inc()
}

// RecordPublish counts a warehouse publication attempt
func (c *Collector) RecordPublish(outcome string) {
	c.WarehousePublishTotal.WithLabelValues(outcome).Inc()
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}
