package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"climate-dashboard/internal/models"
)

func TestFileName(t *testing.T) {
	r := models.YearRange{Start: 1980, End: 2023}

	assert.Equal(t, "temperature_data_1980-2023.csv", FileName(DatasetTemperature, r, FormatCSV))
	assert.Equal(t, "co2_data_1980-2023.csv", FileName(DatasetCO2, r, FormatCSV))
	assert.Equal(t, "sea_level_data_1980-2023.xlsx", FileName(DatasetSeaLevel, r, FormatXLSX))
}

func TestParseDatasetAndFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Dataset
	}{
		{"temperature", DatasetTemperature},
		{"CO2", DatasetCO2},
		{"sea-level", DatasetSeaLevel},
		{"sea_level", DatasetSeaLevel},
	}
	for _, tt := range tests {
		got, err := ParseDataset(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseDataset("methane")
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("parquet")
	assert.Error(t, err)

	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}

func TestWriteCSV_Temperature(t *testing.T) {
	points := []models.TemperaturePoint{
		{Year: 2000, Anomaly: 0.42, Region: models.RegionGlobal},
		{Year: 2001, Anomaly: -0.05, Region: models.RegionGlobal},
		{Year: 2000, Anomaly: 0.504, Region: models.RegionNorthernHemisphere},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, TemperatureTable(points)))

	want := "year,anomaly,region\n" +
		"2000,0.42,Global\n" +
		"2001,-0.05,Global\n" +
		"2000,0.504,Northern Hemisphere\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_SeriesHeaders(t *testing.T) {
	var co2 bytes.Buffer
	require.NoError(t, WriteCSV(&co2, CO2Table([]models.CO2Point{{Year: 1958, Concentration: 315}})))
	assert.Equal(t, "year,concentration\n1958,315\n", co2.String())

	var sea bytes.Buffer
	require.NoError(t, WriteCSV(&sea, SeaLevelTable([]models.SeaLevelPoint{{Year: 1993, Rise: 1.5}})))
	assert.Equal(t, "year,rise\n1993,1.5\n", sea.String())
}

func TestWriteCSV_EmptyTableKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, CO2Table(nil)))
	assert.Equal(t, "year,concentration\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	table := SeaLevelTable([]models.SeaLevelPoint{
		{Year: 1993, Rise: 0.5},
		{Year: 1994, Rise: 3.9},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, DatasetSeaLevel, FormatXLSX, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(string(DatasetSeaLevel))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"year", "rise"}, rows[0])
	assert.Equal(t, "1994", rows[2][0])
	assert.Equal(t, "3.9", rows[2][1])
}
