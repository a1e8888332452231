package model

import "time"

// Horizon is the discrete hourly window the optimization runs over. Slots are
// indexed 0..TMax and carry the forecast price and the renewable generation
// share for that hour. A Horizon is built once per run and never mutated.
type Horizon struct {
	start time.Time
	price []float64
	share []float64
	index map[time.Time]int
}

// NewHorizon builds a Horizon from per-slot prices and renewable shares.
// The slices must have equal length; slot t covers the hour start+t.
func NewHorizon(start time.Time, price, share []float64) *Horizon {
	idx := make(map[time.Time]int, len(price))
	for t := range price {
		idx[start.Add(time.Duration(t)*time.Hour)] = t
	}
	return &Horizon{start: start, price: price, share: share, index: idx}
}

// TMax returns the last valid slot index.
func (h *Horizon) TMax() int { return len(h.price) - 1 }

// Slots returns the number of slots in the horizon.
func (h *Horizon) Slots() int { return len(h.price) }

// Start returns the timestamp of slot 0.
func (h *Horizon) Start() time.Time { return h.start }

// Timestamp returns the wall-clock time of slot t.
func (h *Horizon) Timestamp(t int) time.Time {
	return h.start.Add(time.Duration(t) * time.Hour)
}

// Price returns the forecast price for slot t.
func (h *Horizon) Price(t int) float64 { return h.price[t] }

// RenewableShare returns the renewable generation share for slot t, in [0,1].
func (h *Horizon) RenewableShare(t int) float64 { return h.share[t] }

// SlotAt maps a timestamp to its slot index. The second return value is
// false when the timestamp is not a slot boundary inside the horizon.
func (h *Horizon) SlotAt(ts time.Time) (int, bool) {
	t, ok := h.index[ts]
	return t, ok
}
