package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/internal/models"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []int
	}{
		{name: "empty", n: 0, size: 3, want: nil},
		{name: "exact", n: 6, size: 3, want: []int{3, 3}},
		{name: "remainder", n: 7, size: 3, want: []int{3, 3, 1}},
		{name: "smaller than size", n: 2, size: 1000, want: []int{2}},
		{name: "non-positive size", n: 4, size: 0, want: []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]int, tt.n)
			for i := range rows {
				rows[i] = i
			}

			chunks := Chunk(rows, tt.size)

			var sizes []int
			next := 0
			for _, c := range chunks {
				sizes = append(sizes, len(c))
				for _, v := range c {
					assert.Equal(t, next, v, "rows must stay in order")
					next++
				}
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}

func TestNewGeneration(t *testing.T) {
	generated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	published := generated.Add(time.Minute)
	ds := &models.Dataset{UpperBound: 2024, Seed: 7, GeneratedAt: generated}

	gen := NewGeneration(ds, published)

	_, err := uuid.Parse(gen.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), gen.Seed)
	assert.Equal(t, 2024, gen.UpperBound)
	assert.Equal(t, generated, gen.GeneratedAt)
	assert.Equal(t, published, gen.PublishedAt)

	assert.NotEqual(t, gen.ID, NewGeneration(ds, published).ID)
}

func TestRowsCarryGenerationID(t *testing.T) {
	temps := TemperatureRows("g1", []models.TemperaturePoint{
		{Year: 1880, Anomaly: -0.2, Region: models.RegionGlobal},
		{Year: 1880, Anomaly: -0.24, Region: models.RegionArctic},
	})
	require.Len(t, temps, 2)
	assert.Equal(t, "g1", temps[1].GenerationID)
	assert.Equal(t, models.RegionArctic, temps[1].Region)

	co2 := CO2Rows("g2", []models.CO2Point{{Year: 1958, Concentration: 315}})
	assert.Equal(t, CO2Row{GenerationID: "g2", CO2Point: models.CO2Point{Year: 1958, Concentration: 315}}, co2[0])

	assert.Empty(t, SeaLevelRows("g3", nil))
}
