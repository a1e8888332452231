// Package solver adapts gonum's simplex implementation to the planner's
// solver port.
package solver

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/chargeplan/core/plan"
)

// Simplex solves planning problems with gonum's dense simplex. Of the
// pass-through solver knobs it honors the feasibility tolerance; presolve
// and pivoting strategy are accepted and ignored.
type Simplex struct{}

// New returns a gonum-backed Solver.
func New() *Simplex { return &Simplex{} }

// lpSimplex points to the function used to solve the standard-form LP. It
// can be overridden in tests to simulate solver failures.
var lpSimplex = lp.Simplex

// Solve converts the problem to standard form and runs the simplex
// algorithm. Failures are classified and propagated, never defaulted.
func (s *Simplex) Solve(p *plan.Problem, cfg plan.SolverConfig) (plan.Assignment, error) {
	n := p.NumVars()
	if n == 0 {
		return plan.Assignment{}, nil
	}

	c := make([]float64, n)
	copy(c, p.Cost)

	// Inequality block: one row per variable for x >= 0 (the general form
	// treats variables as free), then the problem's own <= rows.
	nIneq := n + len(p.LessEq)
	g := mat.NewDense(nIneq, n, nil)
	h := make([]float64, nIneq)
	for i := 0; i < n; i++ {
		g.Set(i, i, -1)
	}
	for i, row := range p.LessEq {
		for _, term := range row.Terms {
			g.Set(n+i, term.Col, term.Coef)
		}
		h[n+i] = row.RHS
	}

	var (
		a mat.Matrix
		b []float64
	)
	if len(p.Eq) > 0 {
		eq := mat.NewDense(len(p.Eq), n, nil)
		b = make([]float64, len(p.Eq))
		for i, row := range p.Eq {
			for _, term := range row.Terms {
				eq.Set(i, term.Col, term.Coef)
			}
			b[i] = row.RHS
		}
		a = eq
	}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, sol, err := lpSimplex(cStd, aStd, bStd, cfg.FeasibilityTol, nil)
	if err != nil {
		return nil, &plan.SolverFailure{Kind: classify(err), Err: err}
	}

	// Convert splits each free variable into positive and negative parts;
	// recombine them into the original columns.
	out := make(plan.Assignment, n)
	for i := 0; i < n; i++ {
		out[i] = sol[i] - sol[n+i]
	}
	return out, nil
}

func classify(err error) plan.FailureKind {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return plan.FailureInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return plan.FailureUnbounded
	default:
		return plan.FailureNumerical
	}
}
