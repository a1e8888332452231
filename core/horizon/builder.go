// Package horizon maps the forecast time series onto the dense slot index
// the planner operates on.
package horizon

import (
	"fmt"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
)

// DataGapError reports a forecast series that is not strictly increasing
// and hour-regular over the optimization window.
type DataGapError struct {
	At       time.Time
	Expected time.Time
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("forecast gap: got %s, expected %s", e.At.Format(time.RFC3339), e.Expected.Format(time.RFC3339))
}

// Window is the half-open time range [Start, End) the optimization covers.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

// DefaultWindow shrinks the forecast range by one day on each side. The
// first day absorbs the arrival warm-up and the last day the sessions whose
// departures would otherwise be truncated.
func DefaultWindow(rows []model.ForecastRow) Window {
	if len(rows) == 0 {
		return Window{}
	}
	return Window{
		Start: rows[0].Timestamp.Add(24 * time.Hour),
		End:   rows[len(rows)-1].Timestamp.Add(time.Hour).Add(-24 * time.Hour),
	}
}

// Build selects the rows inside w and produces the slot-indexed Horizon.
// The selected series must be gap-free at hourly resolution.
func Build(rows []model.ForecastRow, w Window) (*model.Horizon, error) {
	if w.IsZero() {
		w = DefaultWindow(rows)
	}
	var selected []model.ForecastRow
	for _, r := range rows {
		if !r.Timestamp.Before(w.Start) && r.Timestamp.Before(w.End) {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no forecast rows inside window %s - %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}

	price := make([]float64, len(selected))
	share := make([]float64, len(selected))
	for t, r := range selected {
		expected := selected[0].Timestamp.Add(time.Duration(t) * time.Hour)
		if !r.Timestamp.Equal(expected) {
			return nil, &DataGapError{At: r.Timestamp, Expected: expected}
		}
		price[t] = r.Price
		share[t] = r.RenewableShare()
	}
	return model.NewHorizon(selected[0].Timestamp, price, share), nil
}
