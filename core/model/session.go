package model

import (
	"fmt"
	"time"
)

// SessionRecord is one raw charging-session row as delivered by the fleet
// data producer. Times of day are minutes-resolution; Departure may be zero
// when Stay carries the planned duration instead.
type SessionRecord struct {
	VehicleID   string
	Date        time.Time
	Arrival     time.Time
	Departure   time.Time
	Stay        time.Duration
	InitialSoC  float64 // percent, 0-100
	DesiredSoC  float64 // percent, 0-100
	CapacityKWh float64
}

// ID returns the session key. Vehicle ids recur across days, so the key
// combines the id with the calendar date.
func (r SessionRecord) ID() string {
	return fmt.Sprintf("%s_%s", r.VehicleID, r.Date.Format("2006-01-02"))
}

// Validate checks that the record is usable for planning.
func (r SessionRecord) Validate() error {
	if r.VehicleID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if r.CapacityKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if r.InitialSoC < 0 || r.InitialSoC > 100 {
		return fmt.Errorf("initial SoC %v out of range", r.InitialSoC)
	}
	if r.DesiredSoC < 0 || r.DesiredSoC > 100 {
		return fmt.Errorf("desired SoC %v out of range", r.DesiredSoC)
	}
	return nil
}

// ChargingSession is one EV stay normalized onto the horizon's slot index.
// Availability is stored only for the active window [ArrivalSlot,
// DepartureSlot]; everything outside is implicitly zero.
type ChargingSession struct {
	ID            string
	ArrivalSlot   int
	DepartureSlot int
	InitialKWh    float64
	DesiredKWh    float64
	CapacityKWh   float64
	MaxPowerKW    float64

	// window[i] is the availability fraction of slot ArrivalSlot+i.
	window []float64
}

// NewChargingSession builds a session with the given active-window
// availability fractions. len(window) must equal the window length.
func NewChargingSession(id string, arrival, departure int, window []float64) ChargingSession {
	return ChargingSession{ID: id, ArrivalSlot: arrival, DepartureSlot: departure, window: window}
}

// Availability returns the fraction of slot t during which the vehicle is
// plugged in and chargeable. Zero outside the active window.
func (s ChargingSession) Availability(t int) float64 {
	if t < s.ArrivalSlot || t > s.DepartureSlot {
		return 0
	}
	return s.window[t-s.ArrivalSlot]
}

// ActiveSlots returns the number of slots in the active window.
func (s ChargingSession) ActiveSlots() int {
	return s.DepartureSlot - s.ArrivalSlot + 1
}
