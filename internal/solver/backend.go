package solver

import (
	"context"
	"time"
)

// Var identifies a Boolean decision variable inside a backend. Values are
// positive and dense, starting at 1.
type Var int

// Sense selects the comparison of a linear constraint.
type Sense int

const (
	SenseLe Sense = iota
	SenseGe
	SenseEq
)

// Term is one coefficient-variable product of a linear constraint.
type Term struct {
	Var   Var
	Coeff int
}

// Outcome classifies how a backend run ended.
type Outcome int

const (
	// OutcomeOptimal means the backend returned a model (optimal under the
	// objective, or any model when no objective was set).
	OutcomeOptimal Outcome = iota
	// OutcomeInfeasible means the backend proved the hard constraints
	// unsatisfiable.
	OutcomeInfeasible
	// OutcomeTimeout means the time budget ran out before a model was found.
	OutcomeTimeout
	// OutcomeCancelled means the surrounding context was cancelled.
	OutcomeCancelled
)

// String names the outcome for logs and result payloads.
func (o Outcome) String() string {
	switch o {
	case OutcomeOptimal:
		return "optimal"
	case OutcomeInfeasible:
		return "infeasible"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Backend is the narrow boundary to the underlying constraint engine. Any
// engine able to create Booleans, accept linear constraints over them,
// maximize a weighted sum, and report proved infeasibility is
// substitutable here.
type Backend interface {
	// NewBool creates a fresh Boolean variable. The name is advisory.
	NewBool(name string) Var
	// AddLinear asserts sum(coeff_i * var_i) <sense> rhs.
	AddLinear(terms []Term, sense Sense, rhs int)
	// AddObjectiveTerm adds weight * v to the maximized objective. Calling
	// it twice for the same variable accumulates.
	AddObjectiveTerm(v Var, weight int)
	// Solve runs the engine under the wall-clock budget, polling ctx for
	// cooperative cancellation. The seed makes randomized engines
	// reproducible; deterministic engines may ignore it.
	Solve(ctx context.Context, timeLimit time.Duration, seed int64) (Outcome, error)
	// Value reads a variable from the model. Only meaningful after an
	// OutcomeOptimal solve.
	Value(v Var) bool
	// ObjectiveValue reports the achieved objective after an
	// OutcomeOptimal solve.
	ObjectiveValue() int64
}

// BackendFactory builds a fresh backend per (sub-)instance so that solves
// never share mutable state.
type BackendFactory func() Backend
