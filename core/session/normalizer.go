// Package session converts raw EV stay records into slot-indexed charging
// sessions with fractional boundary availability.
package session

import (
	"fmt"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
)

// IndexLookupError reports a session boundary that has no slot in the
// horizon. Such sessions are rejected individually; stays straddling the
// window edges are expected near the start and end of the horizon.
type IndexLookupError struct {
	SessionID string
	At        time.Time
}

func (e *IndexLookupError) Error() string {
	return fmt.Sprintf("session %s: no slot for %s", e.SessionID, e.At.Format(time.RFC3339))
}

// Config defines normalization parameters.
type Config struct {
	// MaxStayHours clamps a stay's duration before slot conversion.
	MaxStayHours int `json:"max_stay_hours"`
	// MaxPowerKW is the rated charger power applied to every session.
	MaxPowerKW float64 `json:"max_power_kw"`
}

// SetDefaults applies the reference charger rating and stay cap.
func (c *Config) SetDefaults() {
	if c.MaxStayHours == 0 {
		c.MaxStayHours = 48
	}
	if c.MaxPowerKW == 0 {
		c.MaxPowerKW = 11
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxStayHours < 1 {
		return fmt.Errorf("max_stay_hours must be positive")
	}
	if c.MaxPowerKW <= 0 {
		return fmt.Errorf("max_power_kw must be positive")
	}
	return nil
}

// Rejection pairs a dropped record with the reason it was unusable.
type Rejection struct {
	Record model.SessionRecord
	Err    error
}

// Normalize maps records onto the horizon's slot index. Records whose
// boundaries cannot be resolved are returned as rejections, never as an
// error: a stay outside the window must not abort the run.
func Normalize(records []model.SessionRecord, h *model.Horizon, cfg Config) ([]model.ChargingSession, []Rejection) {
	var (
		sessions []model.ChargingSession
		rejected []Rejection
	)
	for _, rec := range records {
		s, err := normalizeOne(rec, h, cfg)
		if err != nil {
			rejected = append(rejected, Rejection{Record: rec, Err: err})
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, rejected
}

func normalizeOne(rec model.SessionRecord, h *model.Horizon, cfg Config) (model.ChargingSession, error) {
	if err := rec.Validate(); err != nil {
		return model.ChargingSession{}, err
	}

	arrival := rec.Arrival
	departure := rec.Departure
	if departure.IsZero() && rec.Stay > 0 {
		departure = arrival.Add(rec.Stay)
	}
	if departure.Before(arrival) {
		return model.ChargingSession{}, fmt.Errorf("session %s: departure before arrival", rec.ID())
	}
	if maxStay := time.Duration(cfg.MaxStayHours) * time.Hour; departure.Sub(arrival) > maxStay {
		departure = arrival.Add(maxStay)
	}

	tA, ok := h.SlotAt(arrival.Truncate(time.Hour))
	if !ok {
		return model.ChargingSession{}, &IndexLookupError{SessionID: rec.ID(), At: arrival}
	}
	tD, ok := h.SlotAt(departure.Truncate(time.Hour))
	if !ok {
		return model.ChargingSession{}, &IndexLookupError{SessionID: rec.ID(), At: departure}
	}

	s := model.NewChargingSession(rec.ID(), tA, tD, availabilityWindow(arrival, departure, tA, tD))
	s.CapacityKWh = rec.CapacityKWh
	s.InitialKWh = rec.InitialSoC / 100 * rec.CapacityKWh
	s.DesiredKWh = rec.DesiredSoC / 100 * rec.CapacityKWh
	s.MaxPowerKW = cfg.MaxPowerKW
	return s, nil
}

// availabilityWindow computes per-slot presence fractions for the active
// window. Boundary slots carry the fraction of the hour the vehicle is
// actually plugged in; a stay contained in a single slot gets the smaller
// of the two fractions.
func availabilityWindow(arrival, departure time.Time, tA, tD int) []float64 {
	fracA := 1.0
	if m := arrival.Minute(); m != 0 {
		fracA = float64(60-m) / 60
	}
	fracD := 0.0
	if m := departure.Minute(); m != 0 {
		fracD = float64(m) / 60
	}

	window := make([]float64, tD-tA+1)
	if tA == tD {
		window[0] = min(fracA, fracD)
		return window
	}
	window[0] = fracA
	for i := 1; i < len(window)-1; i++ {
		window[i] = 1
	}
	window[len(window)-1] = fracD
	return window
}
