package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"climate-dashboard/internal/analysis"
	"climate-dashboard/internal/charts"
	"climate-dashboard/internal/export"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// DatasetManager regenerates the shared dataset and reports its age.
type DatasetManager interface {
	Regenerate(ctx context.Context) *models.Dataset
	Age(ds *models.Dataset) time.Duration
}

// WarehousePublisher copies datasets to the warehouse.
type WarehousePublisher interface {
	Publish(ctx context.Context, ds *models.Dataset) (string, error)
	State() string
	HealthCheck(ctx context.Context) error
}

const warehousePingTimeout = 2 * time.Second

// ClimateHandler handles the dashboard API endpoints
type ClimateHandler struct {
	dashboard *services.DashboardService
	exports   *services.ExportService
	charts    *services.ChartService
	datasets  DatasetManager
	publisher WarehousePublisher
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewClimateHandler creates a new climate handler. publisher may be nil when
// the warehouse is disabled.
func NewClimateHandler(
	dashboard *services.DashboardService,
	exports *services.ExportService,
	chartService *services.ChartService,
	datasets DatasetManager,
	publisher WarehousePublisher,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ClimateHandler {
	return &ClimateHandler{
		dashboard: dashboard,
		exports:   exports,
		charts:    chartService,
		datasets:  datasets,
		publisher: publisher,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SeriesResponse wraps one filtered table
type SeriesResponse struct {
	Range models.YearRange `json:"range"`
	Count int              `json:"count"`
	Data  interface{}      `json:"data"`
}

// RegenerateResponse reports a forced regeneration
type RegenerateResponse struct {
	UpperBound   int       `json:"upper_bound"`
	Seed         uint64    `json:"seed"`
	GeneratedAt  time.Time `json:"generated_at"`
	GenerationID string    `json:"generation_id,omitempty"`
	PublishError string    `json:"publish_error,omitempty"`
}

// query resolves the request's filters against the current dataset.
func (h *ClimateHandler) query(r *http.Request) (services.Query, *models.Dataset, error) {
	ds := h.dashboard.Dataset(r.Context())
	q, err := parseQuery(r, ds, h.dashboard.DefaultQuery(ds))
	return q, ds, err
}

// GetDashboard handles GET /api/dashboard
func (h *ClimateHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, _, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard", err)
		return
	}

	view, err := h.dashboard.Build(r.Context(), q)
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard", err)
		return
	}
	h.sendJSON(w, view, http.StatusOK)
}

// GetTemperature handles GET /api/temperature
func (h *ClimateHandler) GetTemperature(w http.ResponseWriter, r *http.Request) {
	q, ds, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/temperature", err)
		return
	}
	rows := analysis.FilterTemperature(ds.Temperature, q.Range, q.Regions)
	h.sendJSON(w, SeriesResponse{Range: q.Range, Count: len(rows), Data: rows}, http.StatusOK)
}

// GetCO2 handles GET /api/co2
func (h *ClimateHandler) GetCO2(w http.ResponseWriter, r *http.Request) {
	q, ds, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/co2", err)
		return
	}
	rows := analysis.FilterSeries(ds.CO2, q.Range)
	h.sendJSON(w, SeriesResponse{Range: q.Range, Count: len(rows), Data: rows}, http.StatusOK)
}

// GetSeaLevel handles GET /api/sea-level
func (h *ClimateHandler) GetSeaLevel(w http.ResponseWriter, r *http.Request) {
	q, ds, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/sea-level", err)
		return
	}
	rows := analysis.FilterSeries(ds.SeaLevel, q.Range)
	h.sendJSON(w, SeriesResponse{Range: q.Range, Count: len(rows), Data: rows}, http.StatusOK)
}

// GetDecades handles GET /api/metrics/decades
func (h *ClimateHandler) GetDecades(w http.ResponseWriter, r *http.Request) {
	q, _, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/metrics/decades", err)
		return
	}

	region := models.RegionGlobal
	if raw := r.URL.Query().Get("region"); raw != "" {
		if region, err = models.ParseRegion(raw); err != nil {
			h.sendServiceError(w, r, "/api/metrics/decades", err)
			return
		}
	}

	decades, err := h.dashboard.DecadesFor(r.Context(), q, region)
	if err != nil {
		h.sendServiceError(w, r, "/api/metrics/decades", err)
		return
	}
	h.sendJSON(w, decades, http.StatusOK)
}

// GetGrowth handles GET /api/metrics/growth
func (h *ClimateHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	q, ds, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/metrics/growth", err)
		return
	}
	growth := analysis.GrowthRateSeries(analysis.FilterSeries(ds.CO2, q.Range))
	h.sendJSON(w, SeriesResponse{Range: q.Range, Count: len(growth), Data: growth}, http.StatusOK)
}

// GetCorrelation handles GET /api/metrics/correlation
func (h *ClimateHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.dashboard.Correlation(r.Context()), http.StatusOK)
}

// GetProjection handles GET /api/projection
func (h *ClimateHandler) GetProjection(w http.ResponseWriter, r *http.Request) {
	q, _, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/api/projection", err)
		return
	}
	params, err := parseProjection(r, h.dashboard.Options())
	if err != nil {
		h.sendServiceError(w, r, "/api/projection", err)
		return
	}

	projection, err := h.dashboard.Projection(r.Context(), q, params.Rate, params.Target)
	if err != nil {
		h.sendServiceError(w, r, "/api/projection", err)
		return
	}
	h.sendJSON(w, projection, http.StatusOK)
}

// GetExport handles GET /api/export/{dataset}.{format}
func (h *ClimateHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/export"
	vars := mux.Vars(r)

	dataset, err := export.ParseDataset(vars["dataset"])
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}
	format, err := export.ParseFormat(vars["format"])
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}
	q, _, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}

	dl, err := h.exports.Export(r.Context(), dataset, format, q)
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+dl.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Body)
}

// GetChart handles GET /api/charts/{chart}.{format}
func (h *ClimateHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/charts"
	vars := mux.Vars(r)

	kind, err := charts.ParseKind(vars["chart"])
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}
	format, err := charts.ParseFormat(vars["format"])
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}
	q, _, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}

	var buf bytes.Buffer
	if err := h.charts.Render(r.Context(), kind, format, q, &buf); err != nil {
		h.sendServiceError(w, r, endpoint, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Regenerate handles POST /api/admin/regenerate
func (h *ClimateHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.metrics.RecordAPIError("method_not_allowed", "/api/admin/regenerate")
		h.sendError(w, "regeneration requires POST", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	ds := h.datasets.Regenerate(ctx)

	resp := RegenerateResponse{
		UpperBound:  ds.UpperBound,
		Seed:        ds.Seed,
		GeneratedAt: ds.GeneratedAt,
	}

	if h.publisher != nil {
		id, err := h.publisher.Publish(ctx, ds)
		if err != nil {
			resp.PublishError = err.Error()
		}
		resp.GenerationID = id
	}

	h.logger.Info(ctx, "[API_REGENERATE] Dataset regenerated on request", logging.Fields{
		"upper_bound":   ds.UpperBound,
		"seed":          ds.Seed,
		"generation_id": resp.GenerationID,
	})
	h.sendJSON(w, resp, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ClimateHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds := h.dashboard.Dataset(ctx)

	status := map[string]interface{}{
		"status":              "healthy",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"dataset_upper_bound": ds.UpperBound,
		"dataset_age_seconds": int64(h.datasets.Age(ds).Seconds()),
	}
	if h.publisher != nil {
		status["warehouse_circuit"] = h.publisher.State()

		pingCtx, cancel := context.WithTimeout(ctx, warehousePingTimeout)
		defer cancel()
		if err := h.publisher.HealthCheck(pingCtx); err != nil {
			// The dashboard still serves from the in-memory dataset.
			status["status"] = "degraded"
			status["warehouse"] = "unhealthy"
			h.logger.Warn(ctx, "[HEALTH_CHECK] Warehouse ping failed", logging.Fields{
				"error": err.Error(),
			})
		} else {
			status["warehouse"] = "healthy"
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *ClimateHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *ClimateHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// sendServiceError maps domain errors onto HTTP statuses: validation failures
// are 400, missing data is 404 with guidance, anything else is 500.
func (h *ClimateHandler) sendServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var (
		validationErr   *models.ValidationError
		emptyErr        *models.EmptySeriesError
		insufficientErr *models.InsufficientDataError
	)

	switch {
	case errors.As(err, &validationErr):
		h.metrics.RecordAPIError("validation_error", endpoint)
		h.sendError(w, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &emptyErr), errors.As(err, &insufficientErr):
		h.metrics.RecordAPIError("no_data", endpoint)
		h.sendError(w, guidance(err), http.StatusNotFound)
	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"path":     r.URL.Path,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, "internal error", http.StatusInternalServerError)
	}
}

func guidance(err error) string {
	var insufficient *models.InsufficientDataError
	if errors.As(err, &insufficient) && insufficient.Reason != "" {
		return "No data to show: " + insufficient.Reason + ". Adjust the year range or region selection."
	}
	return "No data to show: " + err.Error() + ". Adjust the year range or region selection."
}

// RegisterRoutes registers all dashboard routes
func (h *ClimateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.DashboardPage).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	// Registered without a method matcher so GET gets a JSON 405 from the handler.
	router.HandleFunc("/api/admin/regenerate", h.Regenerate)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
	api.HandleFunc("/temperature", h.GetTemperature).Methods("GET")
	api.HandleFunc("/co2", h.GetCO2).Methods("GET")
	api.HandleFunc("/sea-level", h.GetSeaLevel).Methods("GET")
	api.HandleFunc("/metrics/decades", h.GetDecades).Methods("GET")
	api.HandleFunc("/metrics/growth", h.GetGrowth).Methods("GET")
	api.HandleFunc("/metrics/correlation", h.GetCorrelation).Methods("GET")
	api.HandleFunc("/projection", h.GetProjection).Methods("GET")
	api.HandleFunc("/export/{dataset:[a-z0-9_-]+}.{format:csv|xlsx}", h.GetExport).Methods("GET")
	api.HandleFunc("/charts/{chart:[a-z0-9-]+}.{format:png|svg}", h.GetChart).Methods("GET")
	api.HandleFunc("/docs", h.Docs).Methods("GET")
	api.HandleFunc("/docs/openapi.json", OpenAPISpec).Methods("GET")
}
