// Package metrics defines the observability port for optimization runs.
package metrics

import "time"

// RunEvent captures the outcome of one optimization run.
type RunEvent struct {
	RunID            string
	Time             time.Time
	SolveDuration    time.Duration
	Sessions         int
	RejectedSessions int
	Variables        int
	TotalCost        float64
	NumTardy         int
}

// Sink records run events for observability purposes.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// NopSink discards all events.
type NopSink struct{}

// RecordRun implements Sink.
func (NopSink) RecordRun(RunEvent) error { return nil }

// Config selects and parameterizes the sink backend.
type Config struct {
	// Backend is "nop" or "influx". Empty means nop.
	Backend string `json:"backend"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}
