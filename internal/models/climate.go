package models

import (
	"fmt"
	"strings"
	"time"
)

// Anchor years of the generated series.
const (
	TemperatureStartYear = 1880
	CO2StartYear         = 1958
	SeaLevelStartYear    = 1993
)

// Region identifies the area a temperature anomaly was aggregated over
type Region string

const (
	RegionGlobal             Region = "Global"
	RegionNorthernHemisphere Region = "Northern Hemisphere"
	RegionSouthernHemisphere Region = "Southern Hemisphere"
	RegionArctic             Region = "Arctic"
	RegionTropics            Region = "Tropics"
)

// AllRegions lists every region in generation order. Global is always first.
var AllRegions = []Region{
	RegionGlobal,
	RegionNorthernHemisphere,
	RegionSouthernHemisphere,
	RegionArctic,
	RegionTropics,
}

// ParseRegion resolves a region from its display name or a compact form such as
// "NorthernHemisphere" or "northern_hemisphere".
func ParseRegion(s string) (Region, error) {
	key := normalizeRegionKey(s)
	for _, r := range AllRegions {
		if normalizeRegionKey(string(r)) == key {
			return r, nil
		}
	}
	return "", &ValidationError{
		Field:   "region",
		Value:   s,
		Message: fmt.Sprintf("unknown region %q", s),
	}
}

func normalizeRegionKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// Observation is a single (year, value) pair, the common shape of every series
type Observation struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Observation returns the observation itself so raw pairs can flow through
// the same generic helpers as typed points.
func (o Observation) Observation() Observation { return o }

// Observable is implemented by every point type of the dashboard
type Observable interface {
	Observation() Observation
}

// TemperaturePoint is an annual temperature anomaly (°C) for one region
type TemperaturePoint struct {
	Year    int     `json:"year" db:"year"`
	Anomaly float64 `json:"anomaly" db:"anomaly"`
	Region  Region  `json:"region" db:"region"`
}

func (p TemperaturePoint) Observation() Observation {
	return Observation{Year: p.Year, Value: p.Anomaly}
}

// CO2Point is an annual mean atmospheric CO2 concentration (ppm)
type CO2Point struct {
	Year          int     `json:"year" db:"year"`
	Concentration float64 `json:"concentration" db:"concentration"`
}

func (p CO2Point) Observation() Observation {
	return Observation{Year: p.Year, Value: p.Concentration}
}

// SeaLevelPoint is the cumulative sea level rise (mm) since 1993
type SeaLevelPoint struct {
	Year int     `json:"year" db:"year"`
	Rise float64 `json:"rise" db:"rise"`
}

func (p SeaLevelPoint) Observation() Observation {
	return Observation{Year: p.Year, Value: p.Rise}
}

// YearRange is an inclusive span of years
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate checks the ordering invariant Start <= End.
func (r YearRange) Validate() error {
	if r.Start > r.End {
		return &ValidationError{
			Field:   "year_range",
			Value:   r.String(),
			Message: fmt.Sprintf("start year %d is after end year %d", r.Start, r.End),
		}
	}
	return nil
}

// Contains reports whether year lies in the range, bounds included.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Within reports whether the range lies entirely inside bounds.
func (r YearRange) Within(bounds YearRange) bool {
	return r.Start >= bounds.Start && r.End <= bounds.End
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// RegionSelection is the set of regions a user asked for. The zero value is
// an empty selection.
type RegionSelection map[Region]struct{}

// NewRegionSelection builds a selection from the given regions.
func NewRegionSelection(regions ...Region) RegionSelection {
	sel := make(RegionSelection, len(regions))
	for _, r := range regions {
		sel[r] = struct{}{}
	}
	return sel
}

// ParseRegionSelection parses a comma separated region list. Blank input
// yields an empty selection.
func ParseRegionSelection(s string) (RegionSelection, error) {
	sel := RegionSelection{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := ParseRegion(part)
		if err != nil {
			return nil, err
		}
		sel[r] = struct{}{}
	}
	return sel, nil
}

func (s RegionSelection) Has(r Region) bool {
	_, ok := s[r]
	return ok
}

// Regions returns the selected regions in AllRegions order.
func (s RegionSelection) Regions() []Region {
	out := make([]Region, 0, len(s))
	for _, r := range AllRegions {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Dataset holds the three generated tables. It is never modified after
// generation and may be shared between requests.
type Dataset struct {
	UpperBound  int                `json:"upper_bound"`
	Seed        uint64             `json:"seed"`
	GeneratedAt time.Time          `json:"generated_at"`
	Temperature []TemperaturePoint `json:"temperature"`
	CO2         []CO2Point         `json:"co2"`
	SeaLevel    []SeaLevelPoint    `json:"sea_level"`
}

// Bounds returns the span of years covered by the temperature table, which is
// the widest of the three series.
func (d *Dataset) Bounds() YearRange {
	return YearRange{Start: TemperatureStartYear, End: d.UpperBound - 1}
}

// GlobalTemperature returns the Global rows of the temperature table.
func (d *Dataset) GlobalTemperature() []TemperaturePoint {
	out := make([]TemperaturePoint, 0, len(d.Temperature)/len(AllRegions)+1)
	for _, p := range d.Temperature {
		if p.Region == RegionGlobal {
			out = append(out, p)
		}
	}
	return out
}
