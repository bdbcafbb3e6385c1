package models

import (
	"errors"
	"testing"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Region
		wantErr bool
	}{
		{name: "display name", input: "Northern Hemisphere", want: RegionNorthernHemisphere},
		{name: "compact form", input: "SouthernHemisphere", want: RegionSouthernHemisphere},
		{name: "snake case", input: "northern_hemisphere", want: RegionNorthernHemisphere},
		{name: "lower case", input: "arctic", want: RegionArctic},
		{name: "padded", input: "  Global ", want: RegionGlobal},
		{name: "kebab case", input: "southern-hemisphere", want: RegionSouthernHemisphere},
		{name: "unknown", input: "Antarctica", wantErr: true},
		{name: "blank", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error type = %T, want *ValidationError", err)
				} else if verr.Field != "region" {
					t.Errorf("Field = %v, want region", verr.Field)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseRegion(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRegionSelection(t *testing.T) {
	sel, err := ParseRegionSelection("Arctic, Global,arctic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := sel.Regions()
	if len(got) != 2 || got[0] != RegionGlobal || got[1] != RegionArctic {
		t.Errorf("Regions() = %v, want [Global Arctic]", got)
	}

	empty, err := ParseRegionSelection("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty input produced %d regions", len(empty))
	}

	if _, err := ParseRegionSelection("Global,Mars"); err == nil {
		t.Error("expected error for unknown region")
	}
}

func TestYearRange(t *testing.T) {
	r := YearRange{Start: 1990, End: 2000}

	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if !r.Contains(1990) || !r.Contains(2000) {
		t.Error("Contains should include both bounds")
	}
	if r.Contains(1989) || r.Contains(2001) {
		t.Error("Contains should exclude years outside the range")
	}
	if !r.Within(YearRange{Start: 1880, End: 2023}) {
		t.Error("Within should accept an enclosing range")
	}
	if r.Within(YearRange{Start: 1995, End: 2023}) {
		t.Error("Within should reject a range starting later")
	}
	if r.String() != "1990-2000" {
		t.Errorf("String() = %v, want 1990-2000", r.String())
	}

	inverted := YearRange{Start: 2000, End: 1999}
	err := inverted.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() on inverted range = %v, want *ValidationError", err)
	}
	if verr.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}

func TestObservations(t *testing.T) {
	tests := []struct {
		name  string
		point Observable
		want  Observation
	}{
		{name: "temperature", point: TemperaturePoint{Year: 2000, Anomaly: 0.4, Region: RegionArctic}, want: Observation{Year: 2000, Value: 0.4}},
		{name: "co2", point: CO2Point{Year: 1960, Concentration: 318.6}, want: Observation{Year: 1960, Value: 318.6}},
		{name: "sea level", point: SeaLevelPoint{Year: 2010, Rise: 56.1}, want: Observation{Year: 2010, Value: 56.1}},
		{name: "raw observation", point: Observation{Year: 2024, Value: 1}, want: Observation{Year: 2024, Value: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Observation(); got != tt.want {
				t.Errorf("Observation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatasetHelpers(t *testing.T) {
	d := &Dataset{
		UpperBound: 1882,
		Temperature: []TemperaturePoint{
			{Year: 1880, Anomaly: -0.1, Region: RegionGlobal},
			{Year: 1881, Anomaly: 0.0, Region: RegionGlobal},
			{Year: 1880, Anomaly: -0.12, Region: RegionArctic},
		},
	}

	if b := d.Bounds(); b != (YearRange{Start: 1880, End: 1881}) {
		t.Errorf("Bounds() = %v, want 1880-1881", b)
	}
	if g := d.GlobalTemperature(); len(g) != 2 {
		t.Errorf("GlobalTemperature() returned %d rows, want 2", len(g))
	}
}

func TestDomainErrors(t *testing.T) {
	empty := &EmptySeriesError{Series: "co2"}
	if empty.Error() != "co2 series is empty" {
		t.Errorf("Error() = %v", empty.Error())
	}
	if (&EmptySeriesError{}).Error() != "series is empty" {
		t.Error("unnamed series should use the generic message")
	}

	insufficient := &InsufficientDataError{Series: "correlation", Have: 1, Need: 2}
	want := "insufficient data for correlation: have 1 points, need 2"
	if insufficient.Error() != want {
		t.Errorf("Error() = %v, want %v", insufficient.Error(), want)
	}
	if empty.IsTransient() || insufficient.IsTransient() {
		t.Error("domain errors should not be transient")
	}
}
