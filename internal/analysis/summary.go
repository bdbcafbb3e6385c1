package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"climate-dashboard/internal/models"
)

// LatestAndFirst returns the first and last element of seq, which must already
// be ordered by year.
func LatestAndFirst[T models.Observable](seq []T) (first, last T, err error) {
	if len(seq) == 0 {
		return first, last, &models.EmptySeriesError{}
	}
	return seq[0], seq[len(seq)-1], nil
}

// WarmingRate is the average change per decade between first and last over a
// series of count points: (last - first) / count * 10.
func WarmingRate(first, last models.Observation, count int) (float64, error) {
	if count <= 0 {
		return 0, &models.EmptySeriesError{Series: "warming rate"}
	}
	return (last.Value - first.Value) / float64(count) * 10, nil
}

// DecadeOf returns floor(year/10)*10.
func DecadeOf(year int) int {
	d := year / 10
	if year < 0 && year%10 != 0 {
		d--
	}
	return d * 10
}

// DecadeAverage groups seq by decade and returns the mean value per decade.
// Decades without points are absent from the result.
func DecadeAverage[T models.Observable](seq []T) map[int]float64 {
	groups := make(map[int][]float64)
	for _, p := range seq {
		o := p.Observation()
		key := DecadeOf(o.Year)
		groups[key] = append(groups[key], o.Value)
	}

	out := make(map[int]float64, len(groups))
	for decade, values := range groups {
		out[decade] = stat.Mean(values, nil)
	}
	return out
}

// DecadeMean is one entry of a decade average table
type DecadeMean struct {
	Decade int     `json:"decade"`
	Mean   float64 `json:"mean"`
}

// SortedDecades flattens a decade map into ascending decade order.
func SortedDecades(m map[int]float64) []DecadeMean {
	out := make([]DecadeMean, 0, len(m))
	for decade, mean := range m {
		out = append(out, DecadeMean{Decade: decade, Mean: mean})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out
}

// JoinedPair is a year present in both series of an inner join
type JoinedPair struct {
	Year int     `json:"year"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
}

// Join performs an inner join of a and b on year, in the order of a. When a
// year repeats in b the first occurrence wins.
func Join[A, B models.Observable](a []A, b []B) []JoinedPair {
	index := make(map[int]float64, len(b))
	for _, p := range b {
		o := p.Observation()
		if _, seen := index[o.Year]; !seen {
			index[o.Year] = o.Value
		}
	}

	out := make([]JoinedPair, 0)
	for _, p := range a {
		o := p.Observation()
		if v, ok := index[o.Year]; ok {
			out = append(out, JoinedPair{Year: o.Year, A: o.Value, B: v})
		}
	}
	return out
}

// Correlation returns the Pearson correlation coefficient of a and b over
// their inner join on year. Fewer than two joined points, or a side with no
// variance, yields *models.InsufficientDataError.
func Correlation[A, B models.Observable](a []A, b []B) (float64, error) {
	joined := Join(a, b)
	if len(joined) < 2 {
		return 0, &models.InsufficientDataError{Series: "correlation", Have: len(joined), Need: 2}
	}

	xs := make([]float64, len(joined))
	ys := make([]float64, len(joined))
	for i, p := range joined {
		xs[i] = p.A
		ys[i] = p.B
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, &models.InsufficientDataError{
			Series: "correlation",
			Have:   len(joined),
			Need:   2,
			Reason: "a series has zero variance",
		}
	}
	return math.Max(-1, math.Min(1, r)), nil
}

// GrowthRate returns the first difference of consecutive values. The result
// has one element fewer than seq; element i is seq[i+1] - seq[i].
func GrowthRate[T models.Observable](seq []T) []float64 {
	if len(seq) < 2 {
		return []float64{}
	}
	out := make([]float64, len(seq)-1)
	for i := 1; i < len(seq); i++ {
		out[i-1] = seq[i].Observation().Value - seq[i-1].Observation().Value
	}
	return out
}

// GrowthRateSeries pairs each difference from GrowthRate with the year of the
// later point.
func GrowthRateSeries[T models.Observable](seq []T) []models.Observation {
	diffs := GrowthRate(seq)
	out := make([]models.Observation, len(diffs))
	for i, d := range diffs {
		out[i] = models.Observation{Year: seq[i+1].Observation().Year, Value: d}
	}
	return out
}
