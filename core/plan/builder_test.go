package plan

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
)

func horizonStart() time.Time {
	return time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
}

func testConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

func makeSession(id string, arrival, departure int, window []float64) model.ChargingSession {
	s := model.NewChargingSession(id, arrival, departure, window)
	s.CapacityKWh = 60
	s.InitialKWh = 12
	s.DesiredKWh = 48
	s.MaxPowerKW = 11
	return s
}

func flatWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestBuildProblemSize(t *testing.T) {
	h := model.NewHorizon(horizonStart(), make([]float64, 168), make([]float64, 168))
	sessions := []model.ChargingSession{
		makeSession("a", 3, 8, flatWindow(6)),
		makeSession("b", 100, 101, flatWindow(2)),
	}
	p := BuildProblem(h, sessions, testConfig())

	// Two variables per active cell plus one slack per session; the
	// problem must scale with the windows, not with the whole horizon.
	wantVars := 2*6 + 1 + 2*2 + 1
	if p.NumVars() != wantVars {
		t.Fatalf("expected %d variables got %d", wantVars, p.NumVars())
	}
	wantLessEq := (6+2)*2 + 2 // power + capacity per cell, departure per session
	if len(p.LessEq) != wantLessEq {
		t.Fatalf("expected %d inequality rows got %d", wantLessEq, len(p.LessEq))
	}
	if len(p.Eq) != 6+2 {
		t.Fatalf("expected %d recurrence rows got %d", 6+2, len(p.Eq))
	}
}

func TestBuildProblemObjectiveCoefficients(t *testing.T) {
	price := []float64{100, 0}
	share := []float64{1, 0.5}
	h := model.NewHorizon(horizonStart(), price, share)
	cfg := testConfig()
	s := makeSession("a", 0, 1, flatWindow(2))
	p := BuildProblem(h, []model.ChargingSession{s}, cfg)

	col0, ok := p.Col(VarKey{Kind: VarPower, Session: "a", Slot: 0})
	if !ok {
		t.Fatalf("missing power variable for slot 0")
	}
	// Fully renewable slot: pure price / unit scale.
	if math.Abs(p.Cost[col0]-0.1) > 1e-12 {
		t.Fatalf("expected cost 0.1 got %v", p.Cost[col0])
	}
	col1, _ := p.Col(VarKey{Kind: VarPower, Session: "a", Slot: 1})
	// Free energy but half fossil: carbon penalty only.
	want := cfg.CarbonWeight * 0.5 / cfg.UnitScale
	if math.Abs(p.Cost[col1]-want) > 1e-12 {
		t.Fatalf("expected cost %v got %v", want, p.Cost[col1])
	}
	slackCol, _ := p.Col(VarKey{Kind: VarSlack, Session: "a", Slot: -1})
	if p.Cost[slackCol] != cfg.SlackWeight {
		t.Fatalf("expected slack weight %v got %v", cfg.SlackWeight, p.Cost[slackCol])
	}
	socCol, _ := p.Col(VarKey{Kind: VarSOC, Session: "a", Slot: 0})
	if p.Cost[socCol] != 0 {
		t.Fatalf("SOC must not appear in the objective")
	}
}

func TestBuildProblemPowerLimitUsesAvailability(t *testing.T) {
	h := model.NewHorizon(horizonStart(), make([]float64, 4), make([]float64, 4))
	s := makeSession("a", 0, 2, []float64{0.5, 1, 0.25})
	p := BuildProblem(h, []model.ChargingSession{s}, testConfig())

	var limits []float64
	for _, row := range p.LessEq {
		if len(row.Terms) == 1 && p.Key(row.Terms[0].Col).Kind == VarPower {
			limits = append(limits, row.RHS)
		}
	}
	want := []float64{5.5, 11, 2.75}
	if len(limits) != len(want) {
		t.Fatalf("expected %d power rows got %d", len(want), len(limits))
	}
	for i := range want {
		if math.Abs(limits[i]-want[i]) > 1e-12 {
			t.Fatalf("power limit %d = %v, want %v", i, limits[i], want[i])
		}
	}
}

func TestBuildProblemRecurrenceIsCausal(t *testing.T) {
	h := model.NewHorizon(horizonStart(), make([]float64, 4), make([]float64, 4))
	s := makeSession("a", 1, 3, flatWindow(3))
	p := BuildProblem(h, []model.ChargingSession{s}, testConfig())

	// Arrival row seeds from initial energy and references no prior slot.
	first := p.Eq[0]
	if first.RHS != s.InitialKWh {
		t.Fatalf("arrival recurrence RHS = %v, want %v", first.RHS, s.InitialKWh)
	}
	if len(first.Terms) != 2 {
		t.Fatalf("arrival recurrence must reference SOC and PD only, got %d terms", len(first.Terms))
	}
	// Later rows chain to the previous slot's SOC inside the window.
	for i, row := range p.Eq[1:] {
		if len(row.Terms) != 3 || row.RHS != 0 {
			t.Fatalf("recurrence row %d malformed: %+v", i+1, row)
		}
		for _, term := range row.Terms {
			k := p.Key(term.Col)
			if k.Slot < s.ArrivalSlot || k.Slot > s.DepartureSlot {
				t.Fatalf("recurrence references slot %d outside the window", k.Slot)
			}
		}
	}
}
