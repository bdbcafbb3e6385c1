package services

import (
	"context"
	"time"

	"climate-dashboard/internal/models"
)

type staticSource struct {
	ds *models.Dataset
}

func (s staticSource) Dataset(context.Context) *models.Dataset {
	return s.ds
}

// fixtureDataset covers 2019-2023 with noise-free, linear series.
func fixtureDataset() *models.Dataset {
	global := []float64{0.9, 0.95, 1.0, 1.05, 1.1}
	ds := &models.Dataset{
		UpperBound:  2024,
		Seed:        42,
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, v := range global {
		ds.Temperature = append(ds.Temperature, models.TemperaturePoint{Year: 2019 + i, Anomaly: v, Region: models.RegionGlobal})
	}
	for i, v := range global {
		ds.Temperature = append(ds.Temperature, models.TemperaturePoint{Year: 2019 + i, Anomaly: v * 1.2, Region: models.RegionArctic})
	}
	for i := 0; i < 5; i++ {
		ds.CO2 = append(ds.CO2, models.CO2Point{Year: 2019 + i, Concentration: 410 + 2*float64(i)})
		ds.SeaLevel = append(ds.SeaLevel, models.SeaLevelPoint{Year: 2019 + i, Rise: 90 + 3*float64(i)})
	}
	return ds
}

func fixtureQuery(start, end int, regions ...models.Region) Query {
	return Query{
		Range:   models.YearRange{Start: start, End: end},
		Regions: models.NewRegionSelection(regions...),
	}
}
