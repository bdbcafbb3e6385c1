package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"climate-dashboard/internal/analysis"
	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// DatasetSource provides the shared base tables.
type DatasetSource interface {
	Dataset(ctx context.Context) *models.Dataset
}

// Query is the user's filter selection for one dashboard pass
type Query struct {
	Range   models.YearRange
	Regions models.RegionSelection
}

// DashboardOptions holds presentation defaults.
type DashboardOptions struct {
	DefaultStartYear int
	DefaultRegions   models.RegionSelection
	ProjectionRate   float64
	ProjectionTarget int
}

// DefaultDashboardOptions mirrors the stock dashboard view.
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{
		DefaultStartYear: 1980,
		DefaultRegions:   models.NewRegionSelection(models.RegionGlobal, models.RegionArctic),
		ProjectionRate:   analysis.DefaultSeaLevelRate,
		ProjectionTarget: analysis.DefaultProjectionTarget,
	}
}

// Notice levels
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// Notice is guidance shown in place of, or next to, a section
type Notice struct {
	Section string `json:"section"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// MetricCard is one headline indicator. Unavailable cards carry Value "N/A"
// and a note telling the user how to get data.
type MetricCard struct {
	Key       string   `json:"key"`
	Title     string   `json:"title"`
	Value     string   `json:"value"`
	Delta     string   `json:"delta,omitempty"`
	Note      string   `json:"note,omitempty"`
	Available bool     `json:"available"`
	Raw       *float64 `json:"raw,omitempty"`
}

type DecadeComparison struct {
	Region  models.Region         `json:"region"`
	Decades []analysis.DecadeMean `json:"decades"`
}

type ProjectionView struct {
	Rate           float64              `json:"rate_mm_per_year"`
	TargetYear     int                  `json:"target_year"`
	Last           models.Observation   `json:"last_observed"`
	Points         []models.Observation `json:"points"`
	HeadlineMetres float64              `json:"headline_metres"`
	Headline       string               `json:"headline"`
}

type CorrelationView struct {
	Available   bool                  `json:"available"`
	Coefficient float64               `json:"coefficient"`
	Strength    string                `json:"strength,omitempty"`
	Summary     string                `json:"summary"`
	Pairs       []analysis.JoinedPair `json:"pairs"`
}

// DashboardView is everything one dashboard pass renders
type DashboardView struct {
	Range       models.YearRange          `json:"range"`
	Bounds      models.YearRange          `json:"bounds"`
	Regions     []models.Region           `json:"regions"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Seed        uint64                    `json:"seed"`
	Cards       []MetricCard              `json:"cards"`
	Temperature []models.TemperaturePoint `json:"temperature"`
	CO2         []models.CO2Point         `json:"co2"`
	SeaLevel    []models.SeaLevelPoint    `json:"sea_level"`
	Decades     *DecadeComparison         `json:"decades,omitempty"`
	Regional    []models.TemperaturePoint `json:"regional"`
	CO2Growth   []models.Observation      `json:"co2_growth"`
	Projection  *ProjectionView           `json:"projection,omitempty"`
	Correlation CorrelationView           `json:"correlation"`
	Notices     []Notice                  `json:"notices"`
}

// DashboardService runs the filter, summarize and project pipeline for one
// request against the shared dataset.
type DashboardService struct {
	source  DatasetSource
	opts    DashboardOptions
	printer *message.Printer
	logger  *logging.ContextLogger
	metrics *metrics.Collector
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source DatasetSource, opts DashboardOptions, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	if opts.DefaultRegions == nil {
		opts.DefaultRegions = DefaultDashboardOptions().DefaultRegions
	}
	return &DashboardService{
		source:  source,
		opts:    opts,
		printer: message.NewPrinter(language.English),
		logger:  logger.WithFields(logging.Fields{"component": "dashboard"}),
		metrics: metricsCollector,
	}
}

// Options returns the presentation defaults.
func (s *DashboardService) Options() DashboardOptions {
	return s.opts
}

// Dataset returns the shared base tables.
func (s *DashboardService) Dataset(ctx context.Context) *models.Dataset {
	return s.source.Dataset(ctx)
}

// DefaultQuery returns the initial selection: the configured start year clamped
// to the dataset bounds through the last generated year, and the default regions.
func (s *DashboardService) DefaultQuery(ds *models.Dataset) Query {
	bounds := ds.Bounds()
	start := s.opts.DefaultStartYear
	if start < bounds.Start {
		start = bounds.Start
	}
	if start > bounds.End {
		start = bounds.End
	}
	return Query{
		Range:   models.YearRange{Start: start, End: bounds.End},
		Regions: s.opts.DefaultRegions,
	}
}

// Build runs one synchronous pipeline pass. Only an inverted range is an
// error; empty series become placeholders and notices.
func (s *DashboardService) Build(ctx context.Context, q Query) (*DashboardView, error) {
	if err := q.Range.Validate(); err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.PipelineDuration)
	ds := s.source.Dataset(ctx)

	view := &DashboardView{
		Range:       q.Range,
		Bounds:      ds.Bounds(),
		Regions:     q.Regions.Regions(),
		GeneratedAt: ds.GeneratedAt,
		Seed:        ds.Seed,
		Temperature: analysis.FilterTemperature(ds.Temperature, q.Range, q.Regions),
		CO2:         analysis.FilterSeries(ds.CO2, q.Range),
		SeaLevel:    analysis.FilterSeries(ds.SeaLevel, q.Range),
		Regional:    []models.TemperaturePoint{},
		Notices:     []Notice{},
	}
	s.metrics.PipelineRowsFiltered.WithLabelValues("temperature").Observe(float64(len(view.Temperature)))
	s.metrics.PipelineRowsFiltered.WithLabelValues("co2").Observe(float64(len(view.CO2)))
	s.metrics.PipelineRowsFiltered.WithLabelValues("sea_level").Observe(float64(len(view.SeaLevel)))

	globalInRange := analysis.FilterTemperature(ds.GlobalTemperature(), q.Range, models.NewRegionSelection(models.RegionGlobal))

	view.Cards = []MetricCard{
		s.temperatureCard(globalInRange, q.Range),
		s.co2Card(view.CO2),
		s.seaLevelCard(view.SeaLevel),
		s.warmingRateCard(globalInRange),
	}

	s.temperatureSections(view, q)
	s.co2Section(view)
	s.seaLevelSection(view, s.opts.ProjectionRate, s.opts.ProjectionTarget)
	view.Correlation = s.correlation(ctx, ds)

	duration := timer.ObserveDuration()
	s.logger.Debug(ctx, "[DASHBOARD_BUILD] Dashboard pipeline completed", logging.Fields{
		"range":            q.Range.String(),
		"regions":          len(view.Regions),
		"temperature_rows": len(view.Temperature),
		"co2_rows":         len(view.CO2),
		"sea_level_rows":   len(view.SeaLevel),
		"notices":          len(view.Notices),
		"duration_ms":      duration.Milliseconds(),
	})

	return view, nil
}

// DecadesFor returns decade averages of one region's filtered rows.
func (s *DashboardService) DecadesFor(ctx context.Context, q Query, region models.Region) (*DecadeComparison, error) {
	if err := q.Range.Validate(); err != nil {
		return nil, err
	}
	ds := s.source.Dataset(ctx)
	rows := analysis.FilterTemperature(ds.Temperature, q.Range, models.NewRegionSelection(region))
	if len(rows) == 0 {
		return nil, &models.EmptySeriesError{Series: string(region) + " temperature"}
	}
	return &DecadeComparison{Region: region, Decades: analysis.SortedDecades(analysis.DecadeAverage(rows))}, nil
}

// Projection extends the last filtered sea level point to targetYear at rate mm/yr.
func (s *DashboardService) Projection(ctx context.Context, q Query, rate float64, targetYear int) (*ProjectionView, error) {
	if err := q.Range.Validate(); err != nil {
		return nil, err
	}
	ds := s.source.Dataset(ctx)
	sea := analysis.FilterSeries(ds.SeaLevel, q.Range)
	if len(sea) == 0 {
		return nil, &models.EmptySeriesError{Series: "sea level"}
	}
	return s.project(sea, rate, targetYear), nil
}

func (s *DashboardService) temperatureCard(global []models.TemperaturePoint, r models.YearRange) MetricCard {
	card := MetricCard{Key: "temperature", Title: "Global Temp Anomaly"}
	first, last, err := analysis.LatestAndFirst(global)
	if err != nil {
		return s.placeholder(card, "Select 'Global' region", err)
	}
	card.Available = true
	card.Value = s.printer.Sprintf("%.2f°C", last.Anomaly)
	card.Delta = s.printer.Sprintf("%+.2f°C since %s", last.Anomaly-first.Anomaly, strconv.Itoa(r.Start))
	card.Raw = floatPtr(last.Anomaly)
	return card
}

func (s *DashboardService) co2Card(co2 []models.CO2Point) MetricCard {
	card := MetricCard{Key: "co2", Title: "CO2 Levels"}
	first, last, err := analysis.LatestAndFirst(co2)
	if err != nil {
		return s.placeholder(card, fmt.Sprintf("Data starts from %d", models.CO2StartYear), err)
	}
	card.Available = true
	card.Value = s.printer.Sprintf("%.1f ppm", last.Concentration)
	card.Delta = s.printer.Sprintf("%+.1f ppm", last.Concentration-first.Concentration)
	card.Raw = floatPtr(last.Concentration)
	return card
}

func (s *DashboardService) seaLevelCard(sea []models.SeaLevelPoint) MetricCard {
	card := MetricCard{Key: "sea_level", Title: "Sea Level Rise"}
	_, last, err := analysis.LatestAndFirst(sea)
	if err != nil {
		return s.placeholder(card, fmt.Sprintf("Data starts from %d", models.SeaLevelStartYear), err)
	}
	card.Available = true
	card.Value = s.printer.Sprintf("%.1f mm", last.Rise)
	card.Delta = s.printer.Sprintf("%+.1f mm since %s", last.Rise, strconv.Itoa(models.SeaLevelStartYear))
	card.Raw = floatPtr(last.Rise)
	return card
}

func (s *DashboardService) warmingRateCard(global []models.TemperaturePoint) MetricCard {
	card := MetricCard{Key: "warming_rate", Title: "Warming Rate"}
	first, last, err := analysis.LatestAndFirst(global)
	if err != nil {
		return s.placeholder(card, "Select 'Global' region", err)
	}
	rate, err := analysis.WarmingRate(first.Observation(), last.Observation(), len(global))
	if err != nil {
		return s.placeholder(card, "Select 'Global' region", err)
	}
	card.Available = true
	card.Value = s.printer.Sprintf("%.3f°C/decade", rate)
	card.Delta = WarmingTrend(rate)
	card.Raw = floatPtr(rate)
	return card
}

func (s *DashboardService) placeholder(card MetricCard, note string, err error) MetricCard {
	card.Available = false
	card.Value = "N/A"
	card.Note = note
	s.metrics.RecordPlaceholder(card.Key, placeholderReason(err))
	return card
}

func (s *DashboardService) temperatureSections(view *DashboardView, q Query) {
	if len(view.Temperature) == 0 {
		msg := "No temperature data for the selected year range."
		if len(q.Regions) == 0 {
			msg = "Please select at least one region to view temperature data."
		}
		view.Notices = append(view.Notices, Notice{Section: "temperature", Level: NoticeWarning, Message: msg})
		return
	}

	decadeRegion := view.Temperature[0].Region
	for _, p := range view.Temperature {
		if p.Region == models.RegionGlobal {
			decadeRegion = models.RegionGlobal
			break
		}
	}
	rows := analysis.FilterRegion(view.Temperature, decadeRegion)
	view.Decades = &DecadeComparison{
		Region:  decadeRegion,
		Decades: analysis.SortedDecades(analysis.DecadeAverage(rows)),
	}

	view.Regional = analysis.FilterYear(view.Temperature, q.Range.End)
	if len(view.Regional) == 0 {
		view.Notices = append(view.Notices, Notice{
			Section: "regional",
			Level:   NoticeInfo,
			Message: "No data available for the latest year in selected range.",
		})
	}
}

func (s *DashboardService) co2Section(view *DashboardView) {
	if len(view.CO2) == 0 {
		view.CO2Growth = []models.Observation{}
		view.Notices = append(view.Notices, Notice{
			Section: "co2",
			Level:   NoticeInfo,
			Message: fmt.Sprintf("CO2 data is only available from %d onwards (when measurements began at Mauna Loa Observatory). Adjust the year range to include years from %d or later.", models.CO2StartYear, models.CO2StartYear),
		})
		return
	}
	view.CO2Growth = analysis.GrowthRateSeries(view.CO2)
}

func (s *DashboardService) seaLevelSection(view *DashboardView, rate float64, target int) {
	if len(view.SeaLevel) == 0 {
		view.Notices = append(view.Notices, Notice{
			Section: "sea_level",
			Level:   NoticeInfo,
			Message: fmt.Sprintf("Sea level data is only available from %d onwards (satellite era). Adjust the year range to include years from %d or later.", models.SeaLevelStartYear, models.SeaLevelStartYear),
		})
		return
	}
	view.Projection = s.project(view.SeaLevel, rate, target)
	view.Notices = append(view.Notices, Notice{Section: "projection", Level: NoticeWarning, Message: view.Projection.Headline})
}

func (s *DashboardService) project(sea []models.SeaLevelPoint, rate float64, target int) *ProjectionView {
	last := sea[len(sea)-1].Observation()
	points := analysis.Project(last, rate, target)

	final := last
	if len(points) > 0 {
		final = points[len(points)-1]
	}
	metres := final.Value / 1000

	return &ProjectionView{
		Rate:           rate,
		TargetYear:     target,
		Last:           last,
		Points:         points,
		HeadlineMetres: metres,
		Headline:       s.printer.Sprintf("At current rates, sea levels could rise by %.2f meters by %s", metres, strconv.Itoa(target)),
	}
}

// Correlation relates Global temperature to CO2 over the full record.
func (s *DashboardService) Correlation(ctx context.Context) CorrelationView {
	return s.correlation(ctx, s.source.Dataset(ctx))
}

// correlation always uses Global temperature against CO2 over the full record,
// independent of the user's filters.
func (s *DashboardService) correlation(ctx context.Context, ds *models.Dataset) CorrelationView {
	global := ds.GlobalTemperature()
	view := CorrelationView{Pairs: analysis.Join(global, ds.CO2)}

	r, err := analysis.Correlation(global, ds.CO2)
	if err != nil {
		s.logger.Warn(ctx, "[DASHBOARD_CORRELATION] Correlation unavailable", logging.Fields{
			"reason": err.Error(),
		})
		s.metrics.RecordPlaceholder("correlation", placeholderReason(err))
		view.Summary = "Not enough overlapping temperature and CO2 data to compute a correlation."
		return view
	}

	view.Available = true
	view.Coefficient = r
	view.Strength = CorrelationStrength(r)
	view.Summary = s.printer.Sprintf("Correlation Coefficient: %.3f (%s correlation)", r, view.Strength)
	return view
}

// WarmingTrend labels a warming rate in °C/decade.
func WarmingTrend(rate float64) string {
	if rate > 0.15 {
		return "Accelerating"
	}
	return "Stable"
}

// CorrelationStrength describes a Pearson coefficient in words, e.g.
// "Strong positive".
func CorrelationStrength(r float64) string {
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	switch a := math.Abs(r); {
	case a >= 0.7:
		return "Strong " + direction
	case a >= 0.4:
		return "Moderate " + direction
	case a >= 0.2:
		return "Weak " + direction
	default:
		return "Negligible"
	}
}

func placeholderReason(err error) string {
	switch err.(type) {
	case *models.EmptySeriesError:
		return "empty_series"
	case *models.InsufficientDataError:
		return "insufficient_data"
	default:
		return "error"
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
