// Package plan builds the charging-schedule linear program, runs it through
// a solver port and evaluates the solved trajectories.
package plan

import "fmt"

// VarKind distinguishes the decision variable families.
type VarKind int

const (
	// VarPower is a per-(session, slot) charging power in kW.
	VarPower VarKind = iota
	// VarSOC is a per-(session, slot) state of charge in kWh.
	VarSOC
	// VarSlack is the per-session unmet-demand overflow in kWh.
	VarSlack
)

func (k VarKind) String() string {
	switch k {
	case VarPower:
		return "power"
	case VarSOC:
		return "soc"
	case VarSlack:
		return "slack"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// VarKey identifies one decision variable. Slot is meaningless for
// VarSlack and held at -1 there.
type VarKey struct {
	Kind    VarKind
	Session string
	Slot    int
}

// Term is one coefficient of a constraint row.
type Term struct {
	Col  int
	Coef float64
}

// Constraint is a sparse row: sum(Terms) <= RHS or == RHS depending on
// which list it is appended to.
type Constraint struct {
	Terms []Term
	RHS   float64
}

// Problem is a linear program over nonnegative variables:
//
//	minimize  Cost . x
//	s.t.      LessEq rows hold as <=, Eq rows hold as ==, x >= 0
//
// Variables exist only for slots inside a session's active window, so the
// problem size is linear in the total active-slot count.
type Problem struct {
	Cost   []float64
	LessEq []Constraint
	Eq     []Constraint

	keys  []VarKey
	index map[VarKey]int
}

func newProblem() *Problem {
	return &Problem{index: make(map[VarKey]int)}
}

// addVar declares a variable with the given objective coefficient and
// returns its column.
func (p *Problem) addVar(k VarKey, cost float64) int {
	col := len(p.keys)
	p.keys = append(p.keys, k)
	p.index[k] = col
	p.Cost = append(p.Cost, cost)
	return col
}

// NumVars returns the number of declared variables.
func (p *Problem) NumVars() int { return len(p.keys) }

// Key returns the variable identity for a column.
func (p *Problem) Key(col int) VarKey { return p.keys[col] }

// Col resolves a variable identity to its column.
func (p *Problem) Col(k VarKey) (int, bool) {
	col, ok := p.index[k]
	return col, ok
}

// Assignment holds one value per problem column.
type Assignment []float64

// At returns the solved value for a variable, or 0 when the variable does
// not exist in the problem.
func (a Assignment) At(p *Problem, k VarKey) float64 {
	col, ok := p.Col(k)
	if !ok {
		return 0
	}
	return a[col]
}
