// Package export serializes filtered climate tables into downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"climate-dashboard/internal/models"
)

// Dataset names one of the three exportable tables
type Dataset string

const (
	DatasetTemperature Dataset = "temperature"
	DatasetCO2         Dataset = "co2"
	DatasetSeaLevel    Dataset = "sea_level"
)

// Datasets lists every exportable table.
var Datasets = []Dataset{DatasetTemperature, DatasetCO2, DatasetSeaLevel}

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ParseDataset resolves a dataset name; "sea-level" and "sealevel" are accepted
// for the sea level table.
func ParseDataset(s string) (Dataset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temperature", "temp":
		return DatasetTemperature, nil
	case "co2":
		return DatasetCO2, nil
	case "sea_level", "sea-level", "sealevel":
		return DatasetSeaLevel, nil
	}
	return "", &models.ValidationError{
		Field:   "dataset",
		Value:   s,
		Message: fmt.Sprintf("unknown dataset %q, expected temperature, co2 or sea_level", s),
	}
}

// ParseFormat resolves an export format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", &models.ValidationError{
		Field:   "format",
		Value:   s,
		Message: fmt.Sprintf("unknown format %q, expected csv or xlsx", s),
	}
}

// FileName returns the download name for a dataset over yearRange, e.g.
// temperature_data_1980-2023.csv.
func FileName(d Dataset, yearRange models.YearRange, f Format) string {
	return fmt.Sprintf("%s_data_%d-%d.%s", d, yearRange.Start, yearRange.End, f)
}

// Table is a header plus rows of cells, in natural row order
type Table struct {
	Header []string
	Rows   [][]string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TemperatureTable lays out temperature points with header year,anomaly,region.
func TemperatureTable(points []models.TemperaturePoint) Table {
	t := Table{Header: []string{"year", "anomaly", "region"}, Rows: make([][]string, 0, len(points))}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{strconv.Itoa(p.Year), formatFloat(p.Anomaly), string(p.Region)})
	}
	return t
}

// CO2Table lays out CO2 points with header year,concentration.
func CO2Table(points []models.CO2Point) Table {
	t := Table{Header: []string{"year", "concentration"}, Rows: make([][]string, 0, len(points))}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{strconv.Itoa(p.Year), formatFloat(p.Concentration)})
	}
	return t
}

// SeaLevelTable lays out sea level points with header year,rise.
func SeaLevelTable(points []models.SeaLevelPoint) Table {
	t := Table{Header: []string{"year", "rise"}, Rows: make([][]string, 0, len(points))}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{strconv.Itoa(p.Year), formatFloat(p.Rise)})
	}
	return t
}

// WriteCSV writes the table as comma separated values, header first.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes the table into a single-sheet workbook named sheet. Numeric
// cells are stored as numbers.
func WriteXLSX(w io.Writer, sheet string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		if n, err := strconv.ParseFloat(c, 64); err == nil {
			values[i] = n
		} else {
			values[i] = c
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// Write serializes t in the requested format.
func Write(w io.Writer, d Dataset, f Format, t Table) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, string(d), t)
	default:
		return WriteCSV(w, t)
	}
}
