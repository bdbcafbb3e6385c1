package services

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"climate-dashboard/internal/analysis"
	"climate-dashboard/internal/charts"
	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// co2SafeLimit is the 350 ppm guide drawn on the CO2 figure.
const co2SafeLimit = 350.0

// Renderer draws a figure in a given image format.
type Renderer interface {
	Render(w io.Writer, f charts.Format) error
}

// ChartService turns dashboard views into figures
type ChartService struct {
	dashboard *DashboardService
	logger    *logging.ContextLogger
	metrics   *metrics.Collector
}

// NewChartService creates a new chart service
func NewChartService(dashboard *DashboardService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ChartService {
	return &ChartService{
		dashboard: dashboard,
		logger:    logger.WithFields(logging.Fields{"component": "charts"}),
		metrics:   metricsCollector,
	}
}

// Render runs the pipeline for q and draws the requested figure to w.
// Figures with nothing to plot return *models.InsufficientDataError before
// anything is written.
func (s *ChartService) Render(ctx context.Context, kind charts.Kind, format charts.Format, q Query, w io.Writer) error {
	view, err := s.dashboard.Build(ctx, q)
	if err != nil {
		return err
	}

	fig, err := Figure(kind, view)
	if err != nil {
		return err
	}

	timer := s.metrics.NewTimer(s.metrics.ChartRenderSeconds.WithLabelValues(string(kind)))
	if err := fig.Render(w, format); err != nil {
		return err
	}
	duration := timer.ObserveDuration()

	s.logger.Debug(ctx, "[CHART_RENDER] Chart rendered", logging.Fields{
		"chart":       kind,
		"format":      format,
		"range":       q.Range.String(),
		"duration_ms": duration.Milliseconds(),
	})
	return nil
}

// Figure maps a dashboard view onto the figure for kind.
func Figure(kind charts.Kind, view *DashboardView) (Renderer, error) {
	switch kind {
	case charts.KindTemperature:
		lines := make([]charts.Line, 0, len(view.Regions))
		for _, r := range view.Regions {
			rows := analysis.FilterRegion(view.Temperature, r)
			if len(rows) == 0 {
				continue
			}
			lines = append(lines, charts.Line{Name: string(r), Points: analysis.Observations(rows)})
		}
		if len(lines) == 0 {
			return nil, noData(kind, "select at least one region")
		}
		return charts.LineChart{
			Title:  "Temperature Anomaly by Region (°C relative to 1951-1980 baseline)",
			YLabel:     "Temperature Anomaly (°C)",
			Lines:      lines,
			References: []charts.Reference{{Label: "Baseline", Value: 0}},
		}, nil

	case charts.KindCO2:
		if len(view.CO2) == 0 {
			return nil, noData(kind, fmt.Sprintf("CO2 data starts from %d", models.CO2StartYear))
		}
		return charts.LineChart{
			Title:  "Atmospheric CO2 Concentration (Mauna Loa Observatory)",
			YLabel:     "CO2 (ppm)",
			Lines:      []charts.Line{{Name: "CO2", Points: analysis.Observations(view.CO2)}},
			References: []charts.Reference{{Label: "350 ppm (Safe Limit)", Value: co2SafeLimit}},
		}, nil

	case charts.KindCO2Growth:
		if len(view.CO2Growth) == 0 {
			return nil, noData(kind, "at least two CO2 years are needed")
		}
		return charts.LineChart{
			Title:  "Annual CO2 Growth Rate",
			YLabel: "ppm/year",
			Lines:  []charts.Line{{Name: "Growth", Points: view.CO2Growth}},
		}, nil

	case charts.KindSeaLevel:
		if len(view.SeaLevel) == 0 {
			return nil, noData(kind, fmt.Sprintf("sea level data starts from %d", models.SeaLevelStartYear))
		}
		return charts.LineChart{
			Title:  "Cumulative Sea Level Rise since 1993 (Satellite Measurements)",
			YLabel: "Sea Level Rise (mm)",
			Lines:  []charts.Line{{Name: "Observed", Points: analysis.Observations(view.SeaLevel)}},
		}, nil

	case charts.KindProjection:
		if view.Projection == nil || len(view.Projection.Points) == 0 {
			return nil, noData(kind, "no sea level data to project from")
		}
		projected := append([]models.Observation{view.Projection.Last}, view.Projection.Points...)
		return charts.LineChart{
			Title:  "Projected Sea Level Rise (Current Trend)",
			YLabel: "Sea Level Rise (mm)",
			Lines: []charts.Line{
				{Name: "Observed", Points: analysis.Observations(view.SeaLevel)},
				{Name: "Projected", Points: projected, Dashed: true},
			},
		}, nil

	case charts.KindDecades:
		if view.Decades == nil || len(view.Decades.Decades) == 0 {
			return nil, noData(kind, "select at least one region")
		}
		bars := make([]chart.Value, len(view.Decades.Decades))
		for i, d := range view.Decades.Decades {
			bars[i] = chart.Value{Label: strconv.Itoa(d.Decade) + "s", Value: d.Mean}
		}
		return charts.BarChart{
			Title:  fmt.Sprintf("Average Temperature Anomaly by Decade (%s)", view.Decades.Region),
			YLabel: "Avg Anomaly (°C)",
			Bars:   bars,
		}, nil

	case charts.KindRegional:
		if len(view.Regional) == 0 {
			return nil, noData(kind, "no data for the latest year in the selected range")
		}
		bars := make([]chart.Value, len(view.Regional))
		for i, p := range view.Regional {
			bars[i] = chart.Value{Label: string(p.Region), Value: p.Anomaly}
		}
		return charts.BarChart{
			Title:  fmt.Sprintf("Temperature Anomaly by Region (%d)", view.Range.End),
			YLabel: "Anomaly (°C)",
			Bars:   bars,
		}, nil

	case charts.KindCorrelation:
		if !view.Correlation.Available {
			return nil, noData(kind, "not enough overlapping temperature and CO2 data")
		}
		pairs := view.Correlation.Pairs
		points := make([]models.Observation, len(pairs))
		xs := make([]float64, len(pairs))
		for i, p := range pairs {
			points[i] = models.Observation{Year: p.Year, Value: p.A}
			xs[i] = p.B
		}
		return charts.LineChart{
			Title:  "Temperature Anomaly vs CO2 Levels",
			XLabel: "CO2 Concentration (ppm)",
			YLabel: "Temperature Anomaly (°C)",
			Lines:  []charts.Line{{Name: "Global", Points: points, XValues: xs, Scatter: true, Trend: true}},
		}, nil

	case charts.KindTrends:
		pairs := view.Correlation.Pairs
		if len(pairs) == 0 {
			return nil, noData(kind, "no years with both temperature and CO2 data")
		}
		temp := make([]models.Observation, len(pairs))
		co2 := make([]models.Observation, len(pairs))
		for i, p := range pairs {
			temp[i] = models.Observation{Year: p.Year, Value: p.A}
			co2[i] = models.Observation{Year: p.Year, Value: p.B}
		}
		return charts.LineChart{
			Title:           "Temperature and CO2 Trends (Dual Axis)",
			YLabel:          "Temperature Anomaly (°C)",
			YLabelSecondary: "CO2 (ppm)",
			Lines: []charts.Line{
				{Name: "Temperature Anomaly", Points: temp},
				{Name: "CO2 Levels", Points: co2, Secondary: true},
			},
		}, nil
	}

	return nil, &models.ValidationError{Field: "chart", Value: string(kind), Message: fmt.Sprintf("unknown chart %q", kind)}
}

func noData(kind charts.Kind, reason string) error {
	return &models.InsufficientDataError{Series: string(kind), Have: 0, Need: 2, Reason: reason}
}
