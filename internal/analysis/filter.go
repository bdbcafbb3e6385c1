// Package analysis holds the pure data-transformation stages of the dashboard:
// filtering, summary statistics and projection. Nothing here mutates its
// inputs; every returned slice is freshly allocated.
package analysis

import "climate-dashboard/internal/models"

// FilterTemperature keeps the points whose year lies in yearRange and whose
// region is selected. Order is preserved. An empty selection or an inverted
// range yields an empty, non-nil result.
func FilterTemperature(points []models.TemperaturePoint, yearRange models.YearRange, regions models.RegionSelection) []models.TemperaturePoint {
	out := make([]models.TemperaturePoint, 0)
	if len(regions) == 0 || yearRange.Start > yearRange.End {
		return out
	}
	for _, p := range points {
		if yearRange.Contains(p.Year) && regions.Has(p.Region) {
			out = append(out, p)
		}
	}
	return out
}

// FilterSeries keeps the points whose year lies in yearRange, preserving order.
// Ranges outside the series' native span give an empty result rather than an
// error.
func FilterSeries[T models.Observable](points []T, yearRange models.YearRange) []T {
	out := make([]T, 0)
	if yearRange.Start > yearRange.End {
		return out
	}
	for _, p := range points {
		if yearRange.Contains(p.Observation().Year) {
			out = append(out, p)
		}
	}
	return out
}

// FilterRegion keeps the temperature points of a single region.
func FilterRegion(points []models.TemperaturePoint, region models.Region) []models.TemperaturePoint {
	out := make([]models.TemperaturePoint, 0)
	for _, p := range points {
		if p.Region == region {
			out = append(out, p)
		}
	}
	return out
}

// FilterYear keeps the temperature points recorded in year.
func FilterYear(points []models.TemperaturePoint, year int) []models.TemperaturePoint {
	return FilterTemperatureYears(points, models.YearRange{Start: year, End: year})
}

// FilterTemperatureYears filters by year only, keeping every region.
func FilterTemperatureYears(points []models.TemperaturePoint, yearRange models.YearRange) []models.TemperaturePoint {
	return FilterSeries(points, yearRange)
}

// Observations converts typed points into plain (year, value) pairs.
func Observations[T models.Observable](points []T) []models.Observation {
	out := make([]models.Observation, len(points))
	for i, p := range points {
		out[i] = p.Observation()
	}
	return out
}
