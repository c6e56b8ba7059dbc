package solver

import (
	"context"
	"fmt"
	"time"

	gophersat "github.com/crillab/gophersat/solver"
)

// GophersatBackend implements Backend on top of the gophersat
// pseudo-Boolean engine. Linear constraints become PB constraints; the
// maximized objective becomes a cost function over complemented literals
// (maximizing sum(w*x) is minimizing the weight left on the table).
//
// gophersat search is deterministic for a fixed input, so the seed is
// accepted but ignored.
type GophersatBackend struct {
	numVars int
	names   []string
	constrs []gophersat.PBConstr
	weights map[Var]int

	model     []bool
	objective int64
}

// NewGophersatBackend returns an empty backend instance.
func NewGophersatBackend() *GophersatBackend {
	return &GophersatBackend{weights: make(map[Var]int)}
}

// NewBool creates a fresh Boolean variable.
func (b *GophersatBackend) NewBool(name string) Var {
	b.numVars++
	b.names = append(b.names, name)
	return Var(b.numVars)
}

// AddLinear asserts sum(coeff_i * var_i) <sense> rhs as one or two
// at-least PB constraints.
func (b *GophersatBackend) AddLinear(terms []Term, sense Sense, rhs int) {
	switch sense {
	case SenseGe:
		b.addAtLeast(terms, rhs)
	case SenseLe:
		negated := make([]Term, len(terms))
		for i, t := range terms {
			negated[i] = Term{Var: t.Var, Coeff: -t.Coeff}
		}
		b.addAtLeast(negated, -rhs)
	case SenseEq:
		b.AddLinear(terms, SenseGe, rhs)
		b.AddLinear(terms, SenseLe, rhs)
	}
}

// addAtLeast normalises sum(coeff_i * lit_i) >= rhs into positive
// coefficients: a negative term c*x rewrites to |c|*(not x) - |c|,
// shifting the bound.
func (b *GophersatBackend) addAtLeast(terms []Term, rhs int) {
	lits := make([]int, 0, len(terms))
	coeffs := make([]int, 0, len(terms))
	for _, t := range terms {
		if t.Coeff == 0 {
			continue
		}
		lit := int(t.Var)
		coeff := t.Coeff
		if coeff < 0 {
			lit = -lit
			coeff = -coeff
			rhs += coeff
		}
		lits = append(lits, lit)
		coeffs = append(coeffs, coeff)
	}
	if rhs <= 0 {
		return // trivially satisfied
	}
	b.constrs = append(b.constrs, gophersat.GtEq(lits, coeffs, rhs))
}

// AddObjectiveTerm accumulates weight * v into the maximized objective.
func (b *GophersatBackend) AddObjectiveTerm(v Var, weight int) {
	if weight == 0 {
		return
	}
	b.weights[v] += weight
}

// Solve runs the PB engine. Minimization happens on a worker goroutine so
// the budget and the cancellation token stay responsive; an abandoned
// worker finishes on its own and is discarded.
func (b *GophersatBackend) Solve(ctx context.Context, timeLimit time.Duration, seed int64) (Outcome, error) {
	_ = seed

	if err := ctx.Err(); err != nil {
		return OutcomeCancelled, err
	}

	if b.numVars == 0 {
		b.model = nil
		b.objective = 0
		return OutcomeOptimal, nil
	}

	// Maximizing sum(w*x) for w>0 is minimizing sum over the complements;
	// a negative weight penalises the variable directly.
	var bound int64
	costLits := make([]gophersat.Lit, 0, len(b.weights))
	costWeights := make([]int, 0, len(b.weights))
	for v := Var(1); int(v) <= b.numVars; v++ {
		w, ok := b.weights[v]
		if !ok || w == 0 {
			continue
		}
		if w > 0 {
			costLits = append(costLits, gophersat.IntToLit(int32(-int(v))))
			costWeights = append(costWeights, w)
			bound += int64(w)
		} else {
			costLits = append(costLits, gophersat.IntToLit(int32(v)))
			costWeights = append(costWeights, -w)
		}
	}

	// The problem sizes itself from the highest literal it has seen; a
	// tautology on the last variable registers the full range even when
	// the constraint set leaves trailing variables unmentioned.
	constrs := append(b.constrs, gophersat.GtEq([]int{b.numVars, -b.numVars}, nil, 1))

	prob := gophersat.ParsePBConstrs(constrs)
	if len(costLits) > 0 {
		prob.SetCostFunc(costLits, costWeights)
	}
	engine := gophersat.New(prob)

	type answer struct {
		cost  int
		model []bool
	}
	done := make(chan answer, 1)
	go func() {
		cost := engine.Minimize()
		var model []bool
		if cost != -1 {
			model = engine.Model()
		}
		done <- answer{cost: cost, model: model}
	}()

	timer := time.NewTimer(timeLimit)
	defer timer.Stop()

	select {
	case ans := <-done:
		if ans.cost == -1 {
			return OutcomeInfeasible, nil
		}
		b.model = ans.model
		b.objective = bound - int64(ans.cost)
		return OutcomeOptimal, nil
	case <-ctx.Done():
		return OutcomeCancelled, ctx.Err()
	case <-timer.C:
		return OutcomeTimeout, nil
	}
}

// Value reads a variable from the model.
func (b *GophersatBackend) Value(v Var) bool {
	idx := int(v) - 1
	if idx < 0 || idx >= len(b.model) {
		return false
	}
	return b.model[idx]
}

// ObjectiveValue reports the achieved maximized objective.
func (b *GophersatBackend) ObjectiveValue() int64 {
	return b.objective
}

// String summarises the instance for debug logs.
func (b *GophersatBackend) String() string {
	return fmt.Sprintf("gophersat instance: %d vars, %d constraints, %d objective terms",
		b.numVars, len(b.constrs), len(b.weights))
}
