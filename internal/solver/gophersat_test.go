package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGophersatMaximizesWeightedChoice(t *testing.T) {
	b := NewGophersatBackend()
	x1 := b.NewBool("x1")
	x2 := b.NewBool("x2")

	// x1 + x2 <= 1, maximize 5*x1 + 3*x2: x1 wins.
	b.AddLinear([]Term{{Var: x1, Coeff: 1}, {Var: x2, Coeff: 1}}, SenseLe, 1)
	b.AddObjectiveTerm(x1, 5)
	b.AddObjectiveTerm(x2, 3)

	outcome, err := b.Solve(context.Background(), 10*time.Second, 0)
	require.NoError(t, err)
	require.Equal(t, OutcomeOptimal, outcome)
	assert.True(t, b.Value(x1))
	assert.False(t, b.Value(x2))
	assert.Equal(t, int64(5), b.ObjectiveValue())
}

func TestGophersatEqualityAndNegativeWeights(t *testing.T) {
	b := NewGophersatBackend()
	x1 := b.NewBool("x1")
	x2 := b.NewBool("x2")
	x3 := b.NewBool("x3")

	// Exactly two of the three, with x3 penalised: x1 and x2 win.
	b.AddLinear([]Term{{Var: x1, Coeff: 1}, {Var: x2, Coeff: 1}, {Var: x3, Coeff: 1}}, SenseEq, 2)
	b.AddObjectiveTerm(x1, 2)
	b.AddObjectiveTerm(x2, 2)
	b.AddObjectiveTerm(x3, -3)

	outcome, err := b.Solve(context.Background(), 10*time.Second, 0)
	require.NoError(t, err)
	require.Equal(t, OutcomeOptimal, outcome)
	assert.True(t, b.Value(x1))
	assert.True(t, b.Value(x2))
	assert.False(t, b.Value(x3))
	assert.Equal(t, int64(4), b.ObjectiveValue())
}

func TestGophersatProvesInfeasibility(t *testing.T) {
	b := NewGophersatBackend()
	x := b.NewBool("x")

	b.AddLinear([]Term{{Var: x, Coeff: 1}}, SenseGe, 1)
	b.AddLinear([]Term{{Var: x, Coeff: 1}}, SenseLe, 0)

	outcome, err := b.Solve(context.Background(), 10*time.Second, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInfeasible, outcome)
}

func TestGophersatEmptyInstanceIsOptimal(t *testing.T) {
	b := NewGophersatBackend()
	outcome, err := b.Solve(context.Background(), time.Second, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOptimal, outcome)
	assert.Equal(t, int64(0), b.ObjectiveValue())
}

func TestGophersatCancelledContext(t *testing.T) {
	b := NewGophersatBackend()
	x := b.NewBool("x")
	b.AddLinear([]Term{{Var: x, Coeff: 1}}, SenseGe, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := b.Solve(ctx, time.Second, 0)
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Error(t, err)
}
