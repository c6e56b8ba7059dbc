package solver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// recordingBackend captures emitted constraints and objective terms without
// solving anything.
type recordingBackend struct {
	vars       []string
	linear     []string
	objectives map[Var]int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{objectives: make(map[Var]int)}
}

func (b *recordingBackend) NewBool(name string) Var {
	b.vars = append(b.vars, name)
	return Var(len(b.vars))
}

func (b *recordingBackend) AddLinear(terms []Term, sense Sense, rhs int) {
	b.linear = append(b.linear, fmt.Sprintf("n=%d sense=%d rhs=%d", len(terms), sense, rhs))
}

func (b *recordingBackend) AddObjectiveTerm(v Var, weight int) {
	b.objectives[v] += weight
}

func (b *recordingBackend) Solve(ctx context.Context, timeLimit time.Duration, seed int64) (Outcome, error) {
	return OutcomeOptimal, nil
}

func (b *recordingBackend) Value(v Var) bool      { return false }
func (b *recordingBackend) ObjectiveValue() int64 { return 0 }

func compileFixture() snapshot.Input {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	return snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, Abbreviation: "MUE", MaxHoursPerWeek: 28},
		},
		Classes: []models.Class{
			{ID: 1, Name: "1a", Grade: 1},
		},
		Subjects: []models.Subject{
			{ID: 10, Name: "Mathematik", Code: "MA"},
			{ID: 20, Name: "Sport", Code: "SP"},
		},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 1, Period: 4},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
			{ID: 2, TeacherID: 1, SubjectID: 20, Level: models.QualificationSubstitute},
		},
		Availabilities: []models.TeacherAvailability{
			{ID: 1, TeacherID: 1, Weekday: 0, Period: 1, Kind: models.AvailabilityPreferred, EffectiveFrom: ref.AddDate(-1, 0, 0)},
		},
		ReferenceDate: ref,
	}
}

func TestVariablePreFiltering(t *testing.T) {
	input := compileFixture()
	// Block the second slot: its two variables disappear.
	input.Availabilities = append(input.Availabilities, models.TeacherAvailability{
		ID: 2, TeacherID: 1, Weekday: 0, Period: 4, Kind: models.AvailabilityBlocked,
		EffectiveFrom: input.ReferenceDate.AddDate(-1, 0, 0),
	})
	snap := snapshot.Build(input)

	backend := newRecordingBackend()
	vars := BuildVariables(snap, backend, nil)

	assert.Equal(t, 2, vars.Count(), "two subjects on the one open slot")
	for _, key := range vars.Keys() {
		assert.Equal(t, int64(100), key.TimeSlotID)
	}
}

func TestVariableSeedingMarksUnmatchedPins(t *testing.T) {
	snap := snapshot.Build(compileFixture())
	backend := newRecordingBackend()

	pins := []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		// Subject 99 has no qualification: tuple filtered.
		{ID: 2, ClassID: 1, TeacherID: 1, SubjectID: 99, TimeSlotID: 100, WeekType: models.WeekAll},
	}
	vars := BuildVariables(snap, backend, pins)

	assert.Len(t, vars.Pins(), 1)
	require.Len(t, vars.UnmatchedPins(), 1)
	assert.Equal(t, int64(2), vars.UnmatchedPins()[0].ID)
}

func TestObjectiveWeights(t *testing.T) {
	snap := snapshot.Build(compileFixture())
	backend := newRecordingBackend()
	vars := BuildVariables(snap, backend, nil)

	NewObjectiveCompiler(snap, vars, backend).Compile()

	// MA at Monday period 1: PREFERRED (+10), PRIMARY (+5), core morning (+8).
	maMorning, ok := vars.Lookup(VarKey{TeacherID: 1, ClassID: 1, SubjectID: 10, TimeSlotID: 100})
	require.True(t, ok)
	assert.Equal(t, 23, backend.objectives[maMorning])

	// Sport at period 4: SUBSTITUTE (-3) plus afternoon sport (+3).
	spAfternoon, ok := vars.Lookup(VarKey{TeacherID: 1, ClassID: 1, SubjectID: 20, TimeSlotID: 101})
	require.True(t, ok)
	assert.Equal(t, 0, backend.objectives[spAfternoon])

	// Sport in the morning: SUBSTITUTE (-3) only, plus PREFERRED (+10).
	spMorning, ok := vars.Lookup(VarKey{TeacherID: 1, ClassID: 1, SubjectID: 20, TimeSlotID: 100})
	require.True(t, ok)
	assert.Equal(t, 7, backend.objectives[spMorning])
}

func TestCompileRejectsUnmatchedPins(t *testing.T) {
	snap := snapshot.Build(compileFixture())
	backend := newRecordingBackend()
	pins := []models.ScheduleEntry{
		{ID: 9, ClassID: 1, TeacherID: 1, SubjectID: 99, TimeSlotID: 100, WeekType: models.WeekAll},
	}
	vars := BuildVariables(snap, backend, pins)

	_, err := NewConstraintCompiler(snap, vars, backend, DefaultLimits()).Compile()
	require.Error(t, err)
}

func TestCompileRejectsExcessDemand(t *testing.T) {
	input := compileFixture()
	input.Requirements = []models.ClassRequirement{
		{ID: 1, ClassID: 1, SubjectID: 10, HoursPerWeek: 5},
	}
	snap := snapshot.Build(input)
	backend := newRecordingBackend()
	vars := BuildVariables(snap, backend, nil)

	_, err := NewConstraintCompiler(snap, vars, backend, DefaultLimits()).Compile()
	require.Error(t, err, "five weekly hours cannot fit into two admissible slots")
}

func TestCompileEmitsAllCategories(t *testing.T) {
	snap := snapshot.Build(compileFixture())
	backend := newRecordingBackend()
	vars := BuildVariables(snap, backend, nil)

	emitted, err := NewConstraintCompiler(snap, vars, backend, DefaultLimits()).Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{
		ConstraintTeacherUniqueness,
		ConstraintClassUniqueness,
		ConstraintAvailability,
		ConstraintQualification,
		ConstraintBreakExclusion,
		ConstraintWeeklyHours,
		ConstraintSubjectHours,
		ConstraintDailyHours,
		ConstraintPartTimeDays,
		ConstraintConsecutiveSubject,
		ConstraintFixedAssignments,
		ConstraintDemandCoverage,
	}, emitted)
}
