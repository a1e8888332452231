package plan

import "fmt"

// FailureKind classifies solver outcomes that produced no usable solution.
type FailureKind int

const (
	FailureInfeasible FailureKind = iota
	FailureUnbounded
	FailureNumerical
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureInfeasible:
		return "infeasible"
	case FailureUnbounded:
		return "unbounded"
	case FailureNumerical:
		return "numerical"
	case FailureTimeout:
		return "timeout"
	}
	return fmt.Sprintf("failure(%d)", int(k))
}

// SolverFailure is surfaced verbatim from the solver adapter. It is never
// retried or replaced with defaults: the soft departure target makes
// infeasibility rare enough that any failure is diagnostically significant.
type SolverFailure struct {
	Kind FailureKind
	Err  error
}

func (e *SolverFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solver failure (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("solver failure (%s)", e.Kind)
}

func (e *SolverFailure) Unwrap() error { return e.Err }

// Solver is the LP backend port. Implementations return an assignment for
// every declared variable, or a *SolverFailure.
type Solver interface {
	Solve(p *Problem, cfg SolverConfig) (Assignment, error)
}
