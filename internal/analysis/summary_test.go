package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/internal/models"
)

var noiseFreeCO2 = []models.CO2Point{
	{Year: 1958, Concentration: 315.0},
	{Year: 1959, Concentration: 316.8},
	{Year: 1960, Concentration: 318.6},
}

func TestLatestAndFirst(t *testing.T) {
	first, last, err := LatestAndFirst(noiseFreeCO2)
	require.NoError(t, err)
	assert.Equal(t, 1958, first.Year)
	assert.Equal(t, 1960, last.Year)

	_, _, err = LatestAndFirst([]models.SeaLevelPoint{})
	var empty *models.EmptySeriesError
	assert.True(t, errors.As(err, &empty))
}

func TestWarmingRate(t *testing.T) {
	rate, err := WarmingRate(
		models.Observation{Year: 1980, Value: 0.2},
		models.Observation{Year: 2023, Value: 1.08},
		44,
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, rate, 1e-9)

	_, err = WarmingRate(models.Observation{}, models.Observation{}, 0)
	var empty *models.EmptySeriesError
	assert.True(t, errors.As(err, &empty))
}

func TestDecadeOf(t *testing.T) {
	tests := []struct {
		year, want int
	}{
		{1880, 1880},
		{1889, 1880},
		{1990, 1990},
		{2023, 2020},
		{0, 0},
		{-1, -10},
		{-10, -10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecadeOf(tt.year), "year %d", tt.year)
	}
}

func TestDecadeAverage(t *testing.T) {
	points := []models.TemperaturePoint{
		{Year: 1988, Anomaly: 0.2},
		{Year: 1989, Anomaly: 0.4},
		{Year: 1990, Anomaly: 0.5},
		{Year: 1999, Anomaly: 0.7},
		{Year: 2010, Anomaly: 1.0},
	}

	got := DecadeAverage(points)

	require.Len(t, got, 3)
	assert.InDelta(t, 0.3, got[1980], 1e-12)
	assert.InDelta(t, 0.6, got[1990], 1e-12)
	assert.InDelta(t, 1.0, got[2010], 1e-12)
	_, present := got[2000]
	assert.False(t, present, "decades without data must be absent")

	for _, p := range points {
		_, ok := got[(p.Year/10)*10]
		assert.True(t, ok)
	}

	sorted := SortedDecades(got)
	require.Len(t, sorted, 3)
	assert.Equal(t, []int{1980, 1990, 2010}, []int{sorted[0].Decade, sorted[1].Decade, sorted[2].Decade})

	assert.Empty(t, DecadeAverage([]models.TemperaturePoint{}))
}

func TestJoin(t *testing.T) {
	temps := []models.TemperaturePoint{
		{Year: 1957, Anomaly: 0.0},
		{Year: 1958, Anomaly: 0.1},
		{Year: 1960, Anomaly: 0.3},
	}

	joined := Join(temps, noiseFreeCO2)

	assert.Equal(t, []JoinedPair{
		{Year: 1958, A: 0.1, B: 315.0},
		{Year: 1960, A: 0.3, B: 318.6},
	}, joined)
}

func TestCorrelation(t *testing.T) {
	temps := []models.TemperaturePoint{
		{Year: 1958, Anomaly: 0.10},
		{Year: 1959, Anomaly: 0.05},
		{Year: 1960, Anomaly: 0.30},
		{Year: 1961, Anomaly: 0.28},
	}
	co2 := append([]models.CO2Point{}, noiseFreeCO2...)
	co2 = append(co2, models.CO2Point{Year: 1961, Concentration: 320.4})

	ab, err := Correlation(temps, co2)
	require.NoError(t, err)
	ba, err := Correlation(co2, temps)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-12)
	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)
	assert.Greater(t, ab, 0.5)
}

func TestCorrelation_PerfectLinear(t *testing.T) {
	a := []models.Observation{{Year: 1, Value: 1}, {Year: 2, Value: 2}, {Year: 3, Value: 3}}
	b := []models.Observation{{Year: 1, Value: 10}, {Year: 2, Value: 8}, {Year: 3, Value: 6}}

	r, err := Correlation(a, b)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)
	assert.GreaterOrEqual(t, r, -1.0)
}

func TestCorrelation_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		a    []models.Observation
		b    []models.Observation
		have int
	}{
		{name: "no overlap", a: []models.Observation{{Year: 1, Value: 1}}, b: []models.Observation{{Year: 2, Value: 1}}, have: 0},
		{name: "single joined point", a: []models.Observation{{Year: 1, Value: 1}, {Year: 3, Value: 2}}, b: []models.Observation{{Year: 1, Value: 5}}, have: 1},
		{name: "both empty", a: nil, b: nil, have: 0},
		{name: "constant series", a: []models.Observation{{Year: 1, Value: 1}, {Year: 2, Value: 1}}, b: []models.Observation{{Year: 1, Value: 3}, {Year: 2, Value: 4}}, have: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Correlation(tt.a, tt.b)
			var insufficient *models.InsufficientDataError
			require.True(t, errors.As(err, &insufficient), "got %v", err)
			assert.Equal(t, tt.have, insufficient.Have)
		})
	}
}

func TestGrowthRate(t *testing.T) {
	got := GrowthRate(noiseFreeCO2)

	require.Len(t, got, 2)
	assert.InDelta(t, 1.8, got[0], 1e-9)
	assert.InDelta(t, 1.8, got[1], 1e-9)

	series := GrowthRateSeries(noiseFreeCO2)
	require.Len(t, series, 2)
	assert.Equal(t, 1959, series[0].Year)
	assert.Equal(t, 1960, series[1].Year)
}

func TestGrowthRate_Lengths(t *testing.T) {
	for n := 0; n <= 5; n++ {
		seq := make([]models.Observation, n)
		for i := range seq {
			seq[i] = models.Observation{Year: 2000 + i, Value: float64(i * i)}
		}
		want := n - 1
		if want < 0 {
			want = 0
		}
		assert.Len(t, GrowthRate(seq), want, "n=%d", n)
	}
}
