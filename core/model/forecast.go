package model

import "time"

// ForecastRow is one hour of the upstream price/generation forecast. All
// generation columns share the same unit so they can be summed.
type ForecastRow struct {
	Timestamp    time.Time
	Price        float64
	Solar        float64
	WindOnshore  float64
	WindOffshore float64
	Coal         float64
	Gas          float64
}

// TotalGeneration sums all generation columns.
func (r ForecastRow) TotalGeneration() float64 {
	return r.Solar + r.WindOnshore + r.WindOffshore + r.Coal + r.Gas
}

// RenewableShare returns the renewable fraction of total generation, or 0
// when no generation is forecast for the hour.
func (r ForecastRow) RenewableShare() float64 {
	total := r.TotalGeneration()
	if total == 0 {
		return 0
	}
	return (r.Solar + r.WindOnshore + r.WindOffshore) / total
}
