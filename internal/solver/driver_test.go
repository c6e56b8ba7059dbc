package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// tinyInstance is the two-teacher, two-class, two-slot Monday morning
// world: MUE teaches Mathematik, SCH teaches Deutsch, both grade 1,
// demand one hour of each subject per class.
func tinyInstance() snapshot.Input {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	return snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, LastName: "Mueller", Abbreviation: "MUE", MaxHoursPerWeek: 28},
			{ID: 2, LastName: "Schulz", Abbreviation: "SCH", MaxHoursPerWeek: 28},
		},
		Classes: []models.Class{
			{ID: 1, Name: "1a", Grade: 1, Size: 20},
			{ID: 2, Name: "1b", Grade: 1, Size: 21},
		},
		Subjects: []models.Subject{
			{ID: 10, Name: "Mathematik", Code: "MA"},
			{ID: 11, Name: "Deutsch", Code: "DE"},
		},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 1, Period: 2},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
			{ID: 2, TeacherID: 2, SubjectID: 11, Level: models.QualificationPrimary},
		},
		Requirements: []models.ClassRequirement{
			{ID: 1, ClassID: 1, SubjectID: 10, HoursPerWeek: 1},
			{ID: 2, ClassID: 1, SubjectID: 11, HoursPerWeek: 1},
			{ID: 3, ClassID: 2, SubjectID: 10, HoursPerWeek: 1},
			{ID: 4, ClassID: 2, SubjectID: 11, HoursPerWeek: 1},
		},
		ReferenceDate: ref,
	}
}

func newTestDriver() *Driver {
	return NewDriver(nil, DefaultLimits(), nil)
}

func TestSolveTinyInstanceFillsTheGrid(t *testing.T) {
	snap := snapshot.Build(tinyInstance())
	result := newTestDriver().Solve(context.Background(), snap, Options{TimeLimit: 10 * time.Second, Seed: 42})

	require.True(t, result.Feasible, "reason: %s", result.Reason)
	require.Len(t, result.Entries, 4)

	perClassSlot := make(map[[2]int64]int)
	perTeacherSlot := make(map[[2]int64]int)
	for _, e := range result.Entries {
		assert.Equal(t, models.WeekAll, e.WeekType)
		perClassSlot[[2]int64{e.ClassID, e.TimeSlotID}]++
		perTeacherSlot[[2]int64{e.TeacherID, e.TimeSlotID}]++
	}
	// Both classes occupy both slots, both teachers teach once per slot.
	assert.Len(t, perClassSlot, 4)
	assert.Len(t, perTeacherSlot, 4)
	for _, n := range perClassSlot {
		assert.Equal(t, 1, n)
	}
	for _, n := range perTeacherSlot {
		assert.Equal(t, 1, n)
	}

	assert.Contains(t, result.SatisfiedConstraints, ConstraintDemandCoverage)
	assert.Greater(t, result.ObjectiveValue, int64(0))
}

func TestSolveDeterministicForFixedSeed(t *testing.T) {
	first := newTestDriver().Solve(context.Background(), snapshot.Build(tinyInstance()), Options{TimeLimit: 10 * time.Second, Seed: 42})
	second := newTestDriver().Solve(context.Background(), snapshot.Build(tinyInstance()), Options{TimeLimit: 10 * time.Second, Seed: 42})

	require.True(t, first.Feasible)
	require.True(t, second.Feasible)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.ObjectiveValue, second.ObjectiveValue)
}

func TestSolveInfeasibleWhenDemandCannotFit(t *testing.T) {
	input := tinyInstance()
	ref := input.ReferenceDate
	// Both teachers blocked on Monday period 1: only period 2 remains but
	// each class still demands two lessons.
	for _, teacherID := range []int64{1, 2} {
		input.Availabilities = append(input.Availabilities, models.TeacherAvailability{
			TeacherID: teacherID, Weekday: 0, Period: 1, Kind: models.AvailabilityBlocked,
			EffectiveFrom: ref.AddDate(-1, 0, 0),
		})
	}
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})

	assert.False(t, result.Feasible)
	assert.Equal(t, OutcomeInfeasible, result.Outcome)
	assert.NotEmpty(t, result.Reason)
}

func TestSolveWithoutDemandIsFeasibleAndClean(t *testing.T) {
	input := tinyInstance()
	input.Requirements = nil
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})

	require.True(t, result.Feasible)
	// No coverage is required, but positive objective weights still pull
	// lessons in; whatever is produced must respect uniqueness.
	seen := make(map[[2]int64]bool)
	for _, e := range result.Entries {
		key := [2]int64{e.TeacherID, e.TimeSlotID}
		assert.False(t, seen[key], "teacher double-booked")
		seen[key] = true
	}
}

func TestSolvePreservesPinnedEntries(t *testing.T) {
	input := tinyInstance()
	room := "R101"
	input.Pinned = []models.ScheduleEntry{
		{ID: 77, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, Room: &room, WeekType: models.WeekAll},
	}
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})

	require.True(t, result.Feasible, "reason: %s", result.Reason)
	var found bool
	for _, e := range result.Entries {
		if e.ID == 77 {
			found = true
			require.NotNil(t, e.Room)
			assert.Equal(t, "R101", *e.Room)
			assert.Equal(t, models.WeekAll, e.WeekType)
		}
	}
	assert.True(t, found, "pinned entry must survive extraction")
}

func TestSolveRejectsPinOnFilteredTuple(t *testing.T) {
	input := tinyInstance()
	// SCH holds no Mathematik qualification, so this pin has no variable.
	input.Pinned = []models.ScheduleEntry{
		{ID: 5, ClassID: 1, TeacherID: 2, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
	}
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})

	assert.False(t, result.Feasible)
	assert.Equal(t, OutcomeInfeasible, result.Outcome)
	assert.Contains(t, result.Reason, "fixed entry")
}

func TestSolvePartTimeTeacherLimitedToThreeDays(t *testing.T) {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	input := snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, Abbreviation: "LEH", MaxHoursPerWeek: 10, IsPartTime: true},
		},
		Classes:  []models.Class{{ID: 1, Name: "2a", Grade: 2}},
		Subjects: []models.Subject{{ID: 10, Name: "Mathematik", Code: "MA"}},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 2, Period: 1},
			{ID: 102, Day: 3, Period: 1},
			{ID: 103, Day: 4, Period: 1},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
		},
		Requirements: []models.ClassRequirement{
			{ID: 1, ClassID: 1, SubjectID: 10, HoursPerWeek: 4},
		},
		ReferenceDate: ref,
	}

	// One period per day over four days: covering four hours would need
	// four working days, one more than part-time allows.
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})
	assert.False(t, result.Feasible)
	assert.Equal(t, OutcomeInfeasible, result.Outcome)

	// Dropping the demand to three makes it fit again.
	input.Requirements[0].HoursPerWeek = 3
	result = newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})
	require.True(t, result.Feasible, "reason: %s", result.Reason)
	assert.Len(t, result.Entries, 3)
}

func TestSolveNoConsecutiveTripleOfOneSubject(t *testing.T) {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	input := snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, Abbreviation: "MUE", MaxHoursPerWeek: 28},
		},
		Classes:  []models.Class{{ID: 1, Name: "3a", Grade: 3}},
		Subjects: []models.Subject{{ID: 10, Name: "Mathematik", Code: "MA"}},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 1, Period: 2},
			{ID: 102, Day: 1, Period: 3},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
		},
		Requirements: []models.ClassRequirement{
			{ID: 1, ClassID: 1, SubjectID: 10, HoursPerWeek: 3},
		},
		ReferenceDate: ref,
	}

	// Three consecutive periods of the same subject are forbidden, and
	// three hours cannot fit into the day any other way.
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})
	assert.False(t, result.Feasible)

	input.Requirements[0].HoursPerWeek = 2
	result = newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})
	require.True(t, result.Feasible, "reason: %s", result.Reason)
	assert.Len(t, result.Entries, 2)
}

func TestSolveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestDriver().Solve(ctx, snapshot.Build(tinyInstance()), Options{TimeLimit: 10 * time.Second})
	assert.False(t, result.Feasible)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Empty(t, result.Entries, "no partial schedule on cancellation")
}

func TestSolveWeekSplitPins(t *testing.T) {
	input := tinyInstance()
	input.Requirements = nil
	input.Pinned = []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekA},
		{ID: 2, ClassID: 1, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, WeekType: models.WeekB},
	}
	result := newTestDriver().Solve(context.Background(), snapshot.Build(input), Options{TimeLimit: 10 * time.Second})

	require.True(t, result.Feasible, "reason: %s", result.Reason)

	var sawA, sawB bool
	for _, e := range result.Entries {
		switch e.ID {
		case 1:
			sawA = true
			assert.Equal(t, models.WeekA, e.WeekType)
		case 2:
			sawB = true
			assert.Equal(t, models.WeekB, e.WeekType)
		}
	}
	assert.True(t, sawA, "A-week pin must survive")
	assert.True(t, sawB, "B-week pin must survive")
}

func TestExtractOrdering(t *testing.T) {
	snap := snapshot.Build(tinyInstance())
	result := newTestDriver().Solve(context.Background(), snap, Options{TimeLimit: 10 * time.Second})
	require.True(t, result.Feasible)

	for i := 1; i < len(result.Entries); i++ {
		prev, _ := snap.TimeSlot(result.Entries[i-1].TimeSlotID)
		cur, _ := snap.TimeSlot(result.Entries[i].TimeSlotID)
		if prev.Day != cur.Day {
			assert.Less(t, prev.Day, cur.Day)
			continue
		}
		if prev.Period != cur.Period {
			assert.Less(t, prev.Period, cur.Period)
			continue
		}
		assert.LessOrEqual(t, result.Entries[i-1].ClassID, result.Entries[i].ClassID)
	}
}
