package plan

import "fmt"

// Config holds the objective weights and physical parameters of the model.
type Config struct {
	// EtaCharge is the charging efficiency applied to drawn power.
	EtaCharge float64 `json:"eta_charge"`
	// CarbonWeight scales the (1 - renewable share) penalty added to the
	// price of each slot.
	CarbonWeight float64 `json:"carbon_weight"`
	// SlackWeight penalizes unmet desired SOC at departure. Large enough
	// to dominate any realistic energy cost, small enough to keep the
	// problem well scaled.
	SlackWeight float64 `json:"slack_weight"`
	// UnitScale converts aggregate kW to the price's energy unit. The
	// reference prices are per MWh, so power in kW is divided by 1000.
	UnitScale float64 `json:"unit_scale"`
	// ToleranceKWh bounds both the tardiness epsilon and the allowed
	// numerical overshoot of a solved SOC above battery capacity.
	ToleranceKWh float64 `json:"tolerance_kwh"`

	Solver SolverConfig `json:"solver"`
}

// SetDefaults applies the reference model parameters.
func (c *Config) SetDefaults() {
	if c.EtaCharge == 0 {
		c.EtaCharge = 0.85
	}
	if c.CarbonWeight == 0 {
		c.CarbonWeight = 50
	}
	if c.SlackWeight == 0 {
		c.SlackWeight = 100
	}
	if c.UnitScale == 0 {
		c.UnitScale = 1000
	}
	if c.ToleranceKWh == 0 {
		c.ToleranceKWh = 1e-3
	}
	c.Solver.SetDefaults()
}

// Validate checks parameter sanity.
func (c Config) Validate() error {
	if c.EtaCharge <= 0 || c.EtaCharge > 1 {
		return fmt.Errorf("eta_charge must be in (0,1]")
	}
	if c.SlackWeight <= 0 {
		return fmt.Errorf("slack_weight must be positive")
	}
	if c.UnitScale <= 0 {
		return fmt.Errorf("unit_scale must be positive")
	}
	if c.ToleranceKWh <= 0 {
		return fmt.Errorf("tolerance_kwh must be positive")
	}
	return nil
}

// SolverConfig carries backend tuning knobs. They are passed through to
// the solver adapter as-is; a backend honors the knobs it understands.
type SolverConfig struct {
	// FeasibilityTol is the primal feasibility tolerance.
	FeasibilityTol float64 `json:"feasibility_tolerance"`
	// Presolve toggles backend presolve when supported.
	Presolve bool `json:"presolve"`
	// Strategy names a backend pivoting strategy when supported.
	Strategy string `json:"strategy"`
}

// SetDefaults applies the default solver tolerance.
func (c *SolverConfig) SetDefaults() {
	if c.FeasibilityTol == 0 {
		c.FeasibilityTol = 1e-7
	}
}
