package charts

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"climate-dashboard/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func series(start int, values ...float64) []models.Observation {
	out := make([]models.Observation, len(values))
	for i, v := range values {
		out[i] = models.Observation{Year: start + i, Value: v}
	}
	return out
}

func TestLineChart_RenderPNG(t *testing.T) {
	c := LineChart{
		Title:  "Temperature Anomaly",
		YLabel: "Anomaly (°C)",
		Lines: []Line{
			{Name: "Global", Points: series(1980, 0.2, 0.25, 0.31, 0.28)},
			{Name: "Arctic", Points: series(1980, 0.24, 0.3, 0.37, 0.34)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestLineChart_RenderSVGWithProjection(t *testing.T) {
	c := LineChart{
		Title:  "Sea Level Projection",
		YLabel: "mm",
		Lines: []Line{
			{Name: "Observed", Points: series(2020, 90, 93.1, 96.5)},
			{Name: "Projected", Points: series(2024, 99.8, 103.1), Dashed: true},
		},
		Width:  640,
		Height: 320,
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatSVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestLineChart_FlatSeries(t *testing.T) {
	c := LineChart{Title: "flat", Lines: []Line{{Name: "flat", Points: series(2000, 1, 1, 1)}}}

	var buf bytes.Buffer
	assert.NoError(t, c.Render(&buf, FormatPNG))
}

func TestLineChart_Scatter(t *testing.T) {
	c := LineChart{
		Title:  "Temperature vs CO2",
		XLabel: "CO2 (ppm)",
		Lines: []Line{{
			Name:    "Global",
			Points:  series(1958, 0.1, 0.05, 0.3),
			XValues: []float64{315, 316.8, 318.6},
			Scatter: true,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestLineChart_NotEnoughPoints(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
	}{
		{name: "no lines"},
		{name: "empty line", lines: []Line{{Name: "Global"}}},
		{name: "only empty lines", lines: []Line{{Name: "Global"}, {Name: "Arctic", Points: []models.Observation{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := LineChart{Title: "t", Lines: tt.lines}.Render(&buf, FormatPNG)
			var insufficient *models.InsufficientDataError
			assert.True(t, errors.As(err, &insufficient), "got %v", err)
		})
	}
}

func TestLineChart_SinglePointDrawnAsMarker(t *testing.T) {
	c := LineChart{
		Title: "Projected Sea Level Rise",
		Lines: []Line{
			{Name: "Observed", Points: series(2023, 95)},
			{Name: "Projected", Points: series(2023, 95, 98.3, 101.6), Dashed: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	var single bytes.Buffer
	lone := LineChart{Title: "one year", Lines: []Line{{Name: "Global", Points: series(2000, 1)}}}
	require.NoError(t, lone.Render(&single, FormatSVG))
	assert.Contains(t, single.String(), "<svg")
}

func TestLineChart_References(t *testing.T) {
	c := LineChart{
		Title:      "Atmospheric CO2",
		YLabel:     "CO2 (ppm)",
		Lines:      []Line{{Name: "CO2", Points: series(1958, 315, 316.8, 318.6)}},
		References: []Reference{{Label: "350 ppm (Safe Limit)", Value: 350}},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatSVG))
	assert.Contains(t, buf.String(), "350 ppm (Safe Limit)")
}

func TestLineChart_FlatSeriesWithBaseline(t *testing.T) {
	c := LineChart{
		Title:      "flat at baseline",
		Lines:      []Line{{Name: "Global", Points: series(2000, 0, 0, 0)}},
		References: []Reference{{Label: "Baseline", Value: 0}},
	}

	var buf bytes.Buffer
	assert.NoError(t, c.Render(&buf, FormatPNG))
}

func TestLineChart_ScatterWithTrend(t *testing.T) {
	c := LineChart{
		Title:  "Temperature vs CO2",
		XLabel: "CO2 (ppm)",
		Lines: []Line{{
			Name:    "Global",
			Points:  series(1958, 0.1, 0.05, 0.3, 0.32),
			XValues: []float64{315, 316.8, 318.6, 320.4},
			Scatter: true,
			Trend:   true,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatSVG))
	assert.Contains(t, buf.String(), "Global trend")
}

func TestLineChart_DualAxis(t *testing.T) {
	c := LineChart{
		Title:           "Temperature and CO2 Trends (Dual Axis)",
		YLabel:          "Temperature Anomaly (°C)",
		YLabelSecondary: "CO2 (ppm)",
		Lines: []Line{
			{Name: "Temperature Anomaly", Points: series(2000, 0.4, 0.45, 0.5)},
			{Name: "CO2 Levels", Points: series(2000, 369, 371, 373), Secondary: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatSVG))
	assert.Contains(t, buf.String(), "CO2 Levels")

	var png bytes.Buffer
	require.NoError(t, c.Render(&png, FormatPNG))
	assert.True(t, bytes.HasPrefix(png.Bytes(), pngMagic))
}

func TestBarChart_Render(t *testing.T) {
	c := BarChart{
		Title:  "Average Anomaly by Decade",
		YLabel: "°C",
		Bars: []chart.Value{
			{Label: "1980s", Value: 0.31},
			{Label: "1990s", Value: 0.45},
			{Label: "2000s", Value: 0.62},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf, FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	var empty bytes.Buffer
	err := BarChart{Title: "none"}.Render(&empty, FormatPNG)
	var insufficient *models.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
}

func TestParseKindAndFormat(t *testing.T) {
	k, err := ParseKind("Sea-Level")
	require.NoError(t, err)
	assert.Equal(t, KindSeaLevel, k)

	k, err = ParseKind("trends")
	require.NoError(t, err)
	assert.Equal(t, KindTrends, k)

	_, err = ParseKind("pie")
	assert.Error(t, err)

	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
}
