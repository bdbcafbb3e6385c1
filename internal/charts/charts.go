// Package charts renders dashboard figures as PNG or SVG images.
package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"climate-dashboard/internal/models"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 480
)

// Kind identifies one of the dashboard figures
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindCO2         Kind = "co2"
	KindCO2Growth   Kind = "co2-growth"
	KindSeaLevel    Kind = "sea-level"
	KindProjection  Kind = "projection"
	KindDecades     Kind = "decades"
	KindRegional    Kind = "regional"
	KindCorrelation Kind = "correlation"
	KindTrends      Kind = "trends"
)

// Kinds lists every figure the dashboard can draw.
var Kinds = []Kind{
	KindTemperature, KindCO2, KindCO2Growth, KindSeaLevel,
	KindProjection, KindDecades, KindRegional, KindCorrelation, KindTrends,
}

// ParseKind resolves a figure name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", &models.ValidationError{Field: "chart", Value: s, Message: fmt.Sprintf("unknown chart %q", s)}
}

// Format is an image encoding
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat resolves an image format, defaulting to PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", &models.ValidationError{Field: "format", Value: s, Message: fmt.Sprintf("unknown image format %q, expected png or svg", s)}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("9467bd"),
}

// Line is one named series on a line figure.
type Line struct {
	Name   string
	Points []models.Observation
	// Dashed draws the series with a dash pattern, used for projections.
	Dashed bool
	// Scatter draws markers only.
	Scatter bool
	// Trend overlays an ordinary least squares fit of the series.
	Trend bool
	// Secondary plots the series against the right-hand y axis.
	Secondary bool
	// XValues overrides the x coordinates, which otherwise are the point years.
	XValues []float64
}

// Reference is a horizontal guide line on the primary y axis.
type Reference struct {
	Label string
	Value float64
}

// LineChart is a figure of one or more series sharing an x axis
type LineChart struct {
	Title           string
	XLabel          string
	YLabel          string
	YLabelSecondary string
	Lines           []Line
	References      []Reference
	Width           int
	Height          int
}

// BarChart is a labelled bar figure
type BarChart struct {
	Title  string
	YLabel string
	Bars   []chart.Value
	Width  int
	Height int
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

func dims(w, h int) (int, int) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

type span struct {
	min, max float64
}

func newSpan() span { return span{min: math.Inf(1), max: math.Inf(-1)} }

func (s *span) add(v float64) {
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
}

func (s span) empty() bool { return s.min > s.max }

// padded returns an explicit range when every value is equal, since go-chart
// rejects a zero-width range.
func (s span) padded() chart.Range {
	if s.empty() || s.min != s.max {
		return nil
	}
	return &chart.ContinuousRange{Min: s.min - 1, Max: s.max + 1}
}

// Render draws the figure in format f. Empty lines are skipped and a line
// with a single point is drawn as a marker; at least one point is required.
func (c LineChart) Render(w io.Writer, f Format) error {
	xs, primary, secondary := newSpan(), newSpan(), newSpan()
	series := make([]chart.Series, 0, len(c.Lines)+len(c.References))
	hasSecondary := false

	for i, line := range c.Lines {
		if len(line.Points) == 0 {
			continue
		}

		xv := line.XValues
		if len(xv) != len(line.Points) {
			xv = make([]float64, len(line.Points))
			for j, p := range line.Points {
				xv[j] = float64(p.Year)
			}
		}
		yv := make([]float64, len(line.Points))
		for j, p := range line.Points {
			yv[j] = p.Value
			xs.add(xv[j])
			if line.Secondary {
				secondary.add(p.Value)
			} else {
				primary.add(p.Value)
			}
		}

		col := palette[i%len(palette)]
		style := chart.Style{StrokeColor: col, StrokeWidth: 2}
		if line.Dashed {
			style.StrokeDashArray = []float64{6, 4}
		}
		if line.Scatter || len(line.Points) == 1 {
			style = chart.Style{StrokeColor: drawing.ColorTransparent, DotWidth: 4, DotColor: col}
		}

		cs := chart.ContinuousSeries{
			Name:    line.Name,
			XValues: xv,
			YValues: yv,
			Style:   style,
		}
		if line.Secondary {
			cs.YAxis = chart.YAxisSecondary
			hasSecondary = true
		}
		series = append(series, cs)

		if line.Trend && len(line.Points) >= 2 && xSpread(xv) {
			series = append(series, chart.LinearRegressionSeries{
				Name:        line.Name + " trend",
				YAxis:       cs.YAxis,
				InnerSeries: cs,
				Style:       chart.Style{StrokeColor: col.WithAlpha(160), StrokeWidth: 2},
			})
		}
	}

	if xs.empty() {
		return &models.InsufficientDataError{Series: c.Title, Have: 0, Need: 1, Reason: "no points to draw"}
	}

	for _, ref := range c.References {
		primary.add(ref.Value)
		series = append(series, chart.ContinuousSeries{
			Name:    ref.Label,
			XValues: []float64{xs.min, xs.max},
			YValues: []float64{ref.Value, ref.Value},
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("7f7f7f"),
				StrokeWidth:     1,
				StrokeDashArray: []float64{4, 4},
			},
		})
	}

	width, height := dims(c.Width, c.Height)
	graph := chart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 28}},
		XAxis:      chart.XAxis{Name: c.XLabel, Range: xs.padded()},
		YAxis:      chart.YAxis{Name: c.YLabel, Range: primary.padded()},
		Series:     series,
	}
	if hasSecondary {
		graph.YAxisSecondary = chart.YAxis{Name: c.YLabelSecondary, Range: secondary.padded()}
	}
	if c.XLabel == "" || c.XLabel == "Year" {
		graph.XAxis.Name = "Year"
		graph.XAxis.ValueFormatter = yearFormatter
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", c.Title, err)
	}
	return nil
}

func xSpread(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return true
		}
	}
	return false
}

// Render draws the bar figure in format f.
func (c BarChart) Render(w io.Writer, f Format) error {
	if len(c.Bars) == 0 {
		return &models.InsufficientDataError{Series: c.Title, Have: 0, Need: 1}
	}

	bars := make([]chart.Value, len(c.Bars))
	for i, b := range c.Bars {
		b.Style = chart.Style{FillColor: palette[0], StrokeColor: palette[0]}
		bars[i] = b
	}

	width, height := dims(c.Width, c.Height)
	barWidth := (width - 120) / (len(bars) * 2)
	if barWidth < 8 {
		barWidth = 8
	}
	graph := chart.BarChart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Name: c.YLabel},
		Bars:       bars,
	}
	if len(bars) == 1 || allEqual(bars) {
		v := bars[0].Value
		graph.YAxis.Range = &chart.ContinuousRange{Min: math.Min(0, v-1), Max: math.Max(0, v) + 1}
	}

	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", c.Title, err)
	}
	return nil
}

func allEqual(values []chart.Value) bool {
	for _, v := range values[1:] {
		if v.Value != values[0].Value {
			return false
		}
	}
	return true
}
