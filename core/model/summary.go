package model

// Shortfall records how far a session's departure SOC fell below the
// desired level.
type Shortfall struct {
	SessionID string  `json:"session_id"`
	KWh       float64 `json:"shortfall_kwh"`
}

// Summary is the run-level outcome handed to exporters and metric sinks.
type Summary struct {
	RunID             string      `json:"run_id"`
	TotalChargingCost float64     `json:"total_charging_cost"`
	NumTardy          int         `json:"num_ev_tardy"`
	Tardiness         []Shortfall `json:"tardiness_details"`
}
