package plan

import (
	"fmt"

	"github.com/kilianp07/chargeplan/core/logger"
	"github.com/kilianp07/chargeplan/core/model"
)

// SlotKey addresses one (session, slot) cell of a solved trajectory.
type SlotKey struct {
	Session string
	Slot    int
}

// Plan holds the solved trajectories, keyed sparsely by active cells only.
type Plan struct {
	Power map[SlotKey]float64
	SOC   map[SlotKey]float64
	Slack map[string]float64
}

// PowerAt returns the scheduled power for a cell, 0 outside active windows.
func (p *Plan) PowerAt(session string, slot int) float64 {
	return p.Power[SlotKey{Session: session, Slot: slot}]
}

// SOCAt returns the solved state of charge for a cell.
func (p *Plan) SOCAt(session string, slot int) float64 {
	return p.SOC[SlotKey{Session: session, Slot: slot}]
}

// ToleranceViolation reports a solved SOC above battery capacity beyond the
// configured tolerance. It points at solver tuning, not at the model, and
// is reported rather than auto-corrected.
type ToleranceViolation struct {
	SessionID string
	Slot      int
	SOC       float64
	Capacity  float64
}

func (e *ToleranceViolation) Error() string {
	return fmt.Sprintf("session %s slot %d: SOC %.6f exceeds capacity %.6f",
		e.SessionID, e.Slot, e.SOC, e.Capacity)
}

// Planner runs the build-solve-extract pipeline. A Planner holds no state
// across runs; identical inputs produce identical plans.
type Planner struct {
	cfg    Config
	solver Solver
	log    logger.Logger
}

// NewPlanner wires a planner to a solver backend.
func NewPlanner(cfg Config, solver Solver, log logger.Logger) *Planner {
	return &Planner{cfg: cfg, solver: solver, log: log}
}

// Run builds the LP, solves it and extracts the trajectories. A solver
// failure is returned as-is with no partial plan.
func (pl *Planner) Run(h *model.Horizon, sessions []model.ChargingSession) (*Plan, error) {
	prob := BuildProblem(h, sessions, pl.cfg)
	pl.log.Infof("model built: %d sessions, %d variables, %d constraints",
		len(sessions), prob.NumVars(), len(prob.LessEq)+len(prob.Eq))

	sol, err := pl.solver.Solve(prob, pl.cfg.Solver)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Power: make(map[SlotKey]float64),
		SOC:   make(map[SlotKey]float64),
		Slack: make(map[string]float64, len(sessions)),
	}
	for col := 0; col < prob.NumVars(); col++ {
		k := prob.Key(col)
		v := sol[col]
		if v < 0 {
			// Simplex round-off below the axis; clip to keep
			// trajectories physical.
			v = 0
		}
		switch k.Kind {
		case VarPower:
			plan.Power[SlotKey{Session: k.Session, Slot: k.Slot}] = v
		case VarSOC:
			plan.SOC[SlotKey{Session: k.Session, Slot: k.Slot}] = v
		case VarSlack:
			plan.Slack[k.Session] = v
		}
	}

	for _, s := range sessions {
		for t := s.ArrivalSlot; t <= s.DepartureSlot; t++ {
			if soc := plan.SOCAt(s.ID, t); soc > s.CapacityKWh+pl.cfg.ToleranceKWh {
				return nil, &ToleranceViolation{SessionID: s.ID, Slot: t, SOC: soc, Capacity: s.CapacityKWh}
			}
		}
	}
	return plan, nil
}
