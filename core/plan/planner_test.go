package plan_test

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
	"github.com/kilianp07/chargeplan/core/plan"
	"github.com/kilianp07/chargeplan/infra/logger"
	"github.com/kilianp07/chargeplan/infra/solver"
)

func freeEnergyHorizon(hours int) *model.Horizon {
	price := make([]float64, hours)
	share := make([]float64, hours)
	for i := range share {
		share[i] = 1
	}
	return model.NewHorizon(time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), price, share)
}

func session(id string, arrival, departure int, window []float64, maxPower float64) model.ChargingSession {
	s := model.NewChargingSession(id, arrival, departure, window)
	s.CapacityKWh = 60
	s.InitialKWh = 12
	s.DesiredKWh = 48
	s.MaxPowerKW = maxPower
	return s
}

func fullWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n-1; i++ {
		w[i] = 1
	}
	// departure on the hour: departure slot unusable
	return w
}

func planConfig() plan.Config {
	cfg := plan.Config{}
	cfg.SetDefaults()
	return cfg
}

func newPlanner(cfg plan.Config) *plan.Planner {
	return plan.NewPlanner(cfg, solver.New(), logger.NopLogger{})
}

func TestPlannerReachesDesiredSOC(t *testing.T) {
	h := freeEnergyHorizon(8)
	// 20% -> 80% of 60 kWh at 11 kW over six usable slots: 36 kWh needed,
	// 56.1 kWh deliverable.
	s := session("ev1_2024-12-24", 0, 6, fullWindow(7), 11)
	cfg := planConfig()

	solved, err := newPlanner(cfg).Run(h, []model.ChargingSession{s})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if slack := solved.Slack[s.ID]; slack > 1e-6 {
		t.Fatalf("expected zero slack got %v", slack)
	}
	if soc := solved.SOCAt(s.ID, 6); soc < 48-1e-6 {
		t.Fatalf("expected departure SOC >= 48 got %v", soc)
	}
	sum := plan.Evaluate(h, []model.ChargingSession{s}, solved, cfg)
	if sum.NumTardy != 0 {
		t.Fatalf("expected no tardy sessions got %d", sum.NumTardy)
	}
}

func TestPlannerReportsTardiness(t *testing.T) {
	h := freeEnergyHorizon(6)
	// Three usable slots at 5 kW deliver 12.75 kWh; 36 kWh are needed.
	s := session("ev1_2024-12-24", 0, 3, fullWindow(4), 5)
	cfg := planConfig()

	solved, err := newPlanner(cfg).Run(h, []model.ChargingSession{s})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	sum := plan.Evaluate(h, []model.ChargingSession{s}, solved, cfg)
	if sum.NumTardy != 1 {
		t.Fatalf("expected 1 tardy session got %d", sum.NumTardy)
	}
	if got := sum.Tardiness[0].KWh; math.Abs(got-23.25) > 1e-6 {
		t.Fatalf("expected shortfall 23.25 got %v", got)
	}
}

func TestPlannerSOCMonotonicity(t *testing.T) {
	h := freeEnergyHorizon(12)
	sessions := []model.ChargingSession{
		session("a", 0, 6, fullWindow(7), 11),
		session("b", 2, 9, []float64{0.5, 1, 1, 1, 1, 1, 1, 0.25}, 7),
	}
	solved, err := newPlanner(planConfig()).Run(h, sessions)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, s := range sessions {
		for tt := s.ArrivalSlot + 1; tt <= s.DepartureSlot; tt++ {
			prev, cur := solved.SOCAt(s.ID, tt-1), solved.SOCAt(s.ID, tt)
			if cur < prev-1e-9 {
				t.Fatalf("session %s: SOC decreased from %v to %v at slot %d", s.ID, prev, cur, tt)
			}
		}
	}
}

func TestPlannerFeasibleWithZeroAvailablePower(t *testing.T) {
	h := freeEnergyHorizon(4)
	s := session("stuck", 1, 1, []float64{0}, 11)
	solved, err := newPlanner(planConfig()).Run(h, []model.ChargingSession{s})
	if err != nil {
		t.Fatalf("slack must keep the model feasible, got %v", err)
	}
	if got := solved.Slack[s.ID]; math.Abs(got-36) > 1e-6 {
		t.Fatalf("expected slack 36 got %v", got)
	}
	if soc := solved.SOCAt(s.ID, 1); math.Abs(soc-12) > 1e-6 {
		t.Fatalf("expected SOC pinned at initial energy, got %v", soc)
	}
}

func TestPlannerPrefersCheapSlots(t *testing.T) {
	price := []float64{500, 0, 500, 0, 500, 0, 0}
	share := []float64{1, 1, 1, 1, 1, 1, 1}
	h := model.NewHorizon(time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), price, share)
	s := session("ev1", 0, 6, fullWindow(7), 11)
	s.DesiredKWh = 30 // ~21.2 kWh of draw, fits in the free slots

	solved, err := newPlanner(planConfig()).Run(h, []model.ChargingSession{s})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if slack := solved.Slack[s.ID]; slack > 1e-6 {
		t.Fatalf("expected zero slack got %v", slack)
	}
	for _, expensive := range []int{0, 2, 4} {
		if p := solved.PowerAt(s.ID, expensive); p > 1e-6 {
			t.Fatalf("expected no draw in expensive slot %d, got %v", expensive, p)
		}
	}
}

func TestPlannerDeterministic(t *testing.T) {
	h := freeEnergyHorizon(10)
	sessions := []model.ChargingSession{
		session("a", 0, 5, fullWindow(6), 11),
		session("b", 3, 8, fullWindow(6), 7),
	}
	first, err := newPlanner(planConfig()).Run(h, sessions)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := newPlanner(planConfig()).Run(h, sessions)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical plans")
	}
}

type failingSolver struct{ err error }

func (f failingSolver) Solve(*plan.Problem, plan.SolverConfig) (plan.Assignment, error) {
	return nil, f.err
}

func TestPlannerPropagatesSolverFailure(t *testing.T) {
	h := freeEnergyHorizon(4)
	s := session("a", 0, 2, fullWindow(3), 11)
	failure := &plan.SolverFailure{Kind: plan.FailureNumerical, Err: errors.New("pivot blew up")}
	pl := plan.NewPlanner(planConfig(), failingSolver{err: failure}, logger.NopLogger{})

	_, err := pl.Run(h, []model.ChargingSession{s})
	var got *plan.SolverFailure
	if !errors.As(err, &got) || got.Kind != plan.FailureNumerical {
		t.Fatalf("expected the solver failure verbatim, got %v", err)
	}
}

type inflatingSolver struct{}

func (inflatingSolver) Solve(p *plan.Problem, _ plan.SolverConfig) (plan.Assignment, error) {
	out := make(plan.Assignment, p.NumVars())
	for col := 0; col < p.NumVars(); col++ {
		if p.Key(col).Kind == plan.VarSOC {
			out[col] = 1000
		}
	}
	return out, nil
}

func TestPlannerDetectsCapacityViolation(t *testing.T) {
	h := freeEnergyHorizon(4)
	s := session("a", 0, 2, fullWindow(3), 11)
	pl := plan.NewPlanner(planConfig(), inflatingSolver{}, logger.NopLogger{})

	_, err := pl.Run(h, []model.ChargingSession{s})
	var viol *plan.ToleranceViolation
	if !errors.As(err, &viol) {
		t.Fatalf("expected ToleranceViolation got %v", err)
	}
	if viol.SessionID != "a" {
		t.Fatalf("violation attributed to wrong session: %+v", viol)
	}
}
