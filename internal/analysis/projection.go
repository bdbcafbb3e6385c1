package analysis

import "climate-dashboard/internal/models"

// Defaults used by the sea level projection.
const (
	DefaultSeaLevelRate     = 3.3 // mm per year
	DefaultProjectionTarget = 2100
)

// Project extrapolates linearly from last at annualRate per year. The start is
// exclusive and the target inclusive: the first projected year is
// last.Year+1 and the final one is targetYear. A target at or before
// last.Year gives an empty result.
func Project(last models.Observation, annualRate float64, targetYear int) []models.Observation {
	if targetYear <= last.Year {
		return []models.Observation{}
	}
	out := make([]models.Observation, 0, targetYear-last.Year)
	for year := last.Year + 1; year <= targetYear; year++ {
		out = append(out, models.Observation{
			Year:  year,
			Value: last.Value + float64(year-last.Year)*annualRate,
		})
	}
	return out
}
