// Package app wires the planning pipeline together from configuration.
package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/chargeplan/config"
	"github.com/kilianp07/chargeplan/core/horizon"
	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/core/model"
	"github.com/kilianp07/chargeplan/core/plan"
	"github.com/kilianp07/chargeplan/core/session"
	"github.com/kilianp07/chargeplan/infra/csvdata"
	"github.com/kilianp07/chargeplan/infra/logger"
	"github.com/kilianp07/chargeplan/infra/metrics"
	"github.com/kilianp07/chargeplan/infra/mqtt"
	"github.com/kilianp07/chargeplan/infra/solver"
	"github.com/kilianp07/chargeplan/pkg/export"
)

// Service runs one batch optimization from input files to exported results.
type Service struct {
	cfg  *config.Config
	log  logger.Logger
	sink coremetrics.Sink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return &Service{cfg: cfg, log: logger.New("service"), sink: sink}, nil
}

// Run executes the batch: load inputs, build the horizon, normalize the
// sessions, solve, evaluate and export. A solver failure aborts the run
// with no partial results.
func (s *Service) Run() (model.Summary, error) {
	runID := uuid.NewString()
	s.log.Infof("run %s: loading inputs", runID)

	rows, err := csvdata.LoadForecast(s.cfg.Inputs.ForecastCSV)
	if err != nil {
		return model.Summary{}, fmt.Errorf("load forecast: %w", err)
	}
	records, err := csvdata.LoadSessions(s.cfg.Inputs.SessionsCSV)
	if err != nil {
		return model.Summary{}, fmt.Errorf("load sessions: %w", err)
	}

	window, err := s.cfg.Window.Parse()
	if err != nil {
		return model.Summary{}, err
	}
	h, err := horizon.Build(rows, window)
	if err != nil {
		return model.Summary{}, fmt.Errorf("build horizon: %w", err)
	}
	s.log.Infof("horizon: %d slots starting %s", h.Slots(), h.Start().Format(time.RFC3339))

	sessions, rejected := session.Normalize(records, h, s.cfg.Session)
	for _, r := range rejected {
		s.log.Warnf("session %s rejected: %v", r.Record.ID(), r.Err)
	}
	s.log.Infof("normalized %d sessions (%d rejected)", len(sessions), len(rejected))

	planner := plan.NewPlanner(s.cfg.Plan, solver.New(), s.log)
	start := time.Now()
	solved, err := planner.Run(h, sessions)
	if err != nil {
		return model.Summary{}, err
	}
	solveDur := time.Since(start)

	sum := plan.Evaluate(h, sessions, solved, s.cfg.Plan)
	sum.RunID = runID
	s.log.Infof("run %s: cost %.2f, %d tardy sessions, solved in %s",
		runID, sum.TotalChargingCost, sum.NumTardy, solveDur)

	if err := export.WriteAll(s.cfg.Output.Dir, h, sessions, solved, sum); err != nil {
		return model.Summary{}, fmt.Errorf("export: %w", err)
	}

	if s.cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(s.cfg.MQTT)
		if err != nil {
			return model.Summary{}, err
		}
		defer pub.Close()
		if err := pub.PublishPlan(h, sessions, solved, sum); err != nil {
			return model.Summary{}, fmt.Errorf("publish plan: %w", err)
		}
	}

	vars := 0
	for _, sess := range sessions {
		vars += 2*sess.ActiveSlots() + 1
	}
	ev := coremetrics.RunEvent{
		RunID:            runID,
		Time:             start,
		SolveDuration:    solveDur,
		Sessions:         len(sessions),
		RejectedSessions: len(rejected),
		Variables:        vars,
		TotalCost:        sum.TotalChargingCost,
		NumTardy:         sum.NumTardy,
	}
	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("record run metrics: %v", err)
	}
	return sum, nil
}
