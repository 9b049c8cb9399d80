package weights

import "time"

// TrendPoint is a single point of the weight trend line chart.
type TrendPoint struct {
	Day      time.Time `json:"day"`
	WeightKg float64   `json:"weightKg"`
}

// Analyzer computes weight summary values out of already loaded records.
// All methods are pure - they expect the history as the repo returns it
// (ascending by recorded date) and never touch storage themselves.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Latest returns the most recent record, i.e. the last one by date order.
// The second return value is false when there are no records yet.
func (a *Analyzer) Latest(records []WeightRecord) (WeightRecord, bool) {
	if len(records) == 0 {
		return WeightRecord{}, false
	}
	return records[len(records)-1], true
}

// Extremes returns the lowest and highest recorded weight.
// ok is false when there are no records yet.
func (a *Analyzer) Extremes(records []WeightRecord) (minKg, maxKg float64, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}

	minKg, maxKg = records[0].WeightKg, records[0].WeightKg
	for _, r := range records[1:] {
		if r.WeightKg < minKg {
			minKg = r.WeightKg
		}
		if r.WeightKg > maxKg {
			maxKg = r.WeightKg
		}
	}
	return minKg, maxKg, true
}

// NetChange returns the signed difference between the last and the first
// record, or 0 for fewer than 2 records.
func (a *Analyzer) NetChange(records []WeightRecord) float64 {
	if len(records) < 2 {
		return 0
	}
	return records[len(records)-1].WeightKg - records[0].WeightKg
}

// TrendSeries maps the history to chart-ready points, keeping the
// ascending date order of the input.
func (a *Analyzer) TrendSeries(records []WeightRecord) []TrendPoint {
	points := make([]TrendPoint, 0, len(records))
	for _, r := range records {
		points = append(points, TrendPoint{
			Day:      r.RecordedAt.Truncate(24 * time.Hour),
			WeightKg: r.WeightKg,
		})
	}
	return points
}
