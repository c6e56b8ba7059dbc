package solver

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// Options tunes one solve run.
type Options struct {
	TimeLimit time.Duration
	Seed      int64
}

// Result is the raw driver output before scoring and persistence.
type Result struct {
	Entries              []models.ScheduleEntry
	ObjectiveValue       int64
	Feasible             bool
	Outcome              Outcome
	Reason               string
	SatisfiedConstraints []string
	ViolatedConstraints  []string
	Duration             time.Duration
	VariableCount        int
}

// Driver runs the variable builder, both compilers and the backend over a
// snapshot, handling week-split pins and outcome classification.
type Driver struct {
	factory BackendFactory
	limits  Limits
	logger  *zap.Logger
}

// NewDriver wires a driver. A nil factory defaults to gophersat.
func NewDriver(factory BackendFactory, limits Limits, logger *zap.Logger) *Driver {
	if factory == nil {
		factory = func() Backend { return NewGophersatBackend() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{factory: factory, limits: limits, logger: logger}
}

// Solve produces a schedule honoring the snapshot's pins. ALL-week pins
// are fixed decision variables; A- and B-week pins stay out of the model
// (fresh entries are ALL-week and collide with either week, so the pins'
// cells are excluded instead) and rejoin the result after extraction.
func (d *Driver) Solve(ctx context.Context, snap *snapshot.Snapshot, opts Options) *Result {
	start := time.Now()

	backend := d.factory()
	vars := BuildVariables(snap, backend, snap.Pinned())
	d.logger.Debug("solver_variables_built", zap.Int("count", vars.Count()))

	constraints := NewConstraintCompiler(snap, vars, backend, d.limits)
	emitted, err := constraints.Compile()
	if err != nil {
		return &Result{
			Feasible:            false,
			Outcome:             OutcomeInfeasible,
			Reason:              err.Error(),
			ViolatedConstraints: []string{ConstraintFixedAssignments, ConstraintDemandCoverage},
		}
	}

	NewObjectiveCompiler(snap, vars, backend).Compile()

	outcome, solveErr := backend.Solve(ctx, opts.TimeLimit, opts.Seed)
	duration := time.Since(start)
	switch outcome {
	case OutcomeOptimal:
		entries := Extract(snap, vars, backend)
		entries = appendWeekPins(snap, entries, vars.WeekPins())
		return &Result{
			Entries:              entries,
			ObjectiveValue:       backend.ObjectiveValue(),
			Feasible:             true,
			Outcome:              outcome,
			SatisfiedConstraints: emitted,
			Duration:             duration,
			VariableCount:        vars.Count(),
		}
	case OutcomeInfeasible:
		return &Result{
			Feasible:            false,
			Outcome:             outcome,
			Reason:              "no feasible schedule exists under the emitted constraints",
			ViolatedConstraints: emitted,
			Duration:            duration,
			VariableCount:       vars.Count(),
		}
	case OutcomeCancelled:
		reason := "solve cancelled"
		if solveErr != nil {
			reason = solveErr.Error()
		}
		return &Result{Feasible: false, Outcome: outcome, Reason: reason, Duration: duration, VariableCount: vars.Count()}
	default:
		return &Result{
			Feasible:      false,
			Outcome:       OutcomeTimeout,
			Reason:        "time budget exhausted without a feasible solution",
			Duration:      duration,
			VariableCount: vars.Count(),
		}
	}
}

// appendWeekPins rejoins the A/B pins and restores the canonical
// (day, period, class, teacher) order.
func appendWeekPins(snap *snapshot.Snapshot, entries, weekPins []models.ScheduleEntry) []models.ScheduleEntry {
	if len(weekPins) == 0 {
		return entries
	}
	entries = append(entries, weekPins...)
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		slotA, _ := snap.TimeSlot(a.TimeSlotID)
		slotB, _ := snap.TimeSlot(b.TimeSlotID)
		if slotA.Day != slotB.Day {
			return slotA.Day < slotB.Day
		}
		if slotA.Period != slotB.Period {
			return slotA.Period < slotB.Period
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.TeacherID != b.TeacherID {
			return a.TeacherID < b.TeacherID
		}
		return a.WeekType < b.WeekType
	})
	return entries
}
