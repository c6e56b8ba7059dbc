package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

func scorerFixture() *snapshot.Snapshot {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	return snapshot.Build(snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, Abbreviation: "MUE", MaxHoursPerWeek: 28},
			{ID: 2, Abbreviation: "SCH", MaxHoursPerWeek: 28},
		},
		Classes: []models.Class{
			{ID: 1, Name: "1a", Grade: 1},
		},
		Subjects: []models.Subject{
			{ID: 10, Name: "Mathematik", Code: "MA"},
			{ID: 20, Name: "Sport", Code: "SP"},
			{ID: 30, Name: "Musik", Code: "MU"},
		},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 1, Period: 5},
			{ID: 102, Day: 2, Period: 1},
			{ID: 103, Day: 3, Period: 1},
			{ID: 104, Day: 4, Period: 1},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
			{ID: 2, TeacherID: 1, SubjectID: 30, Level: models.QualificationSecondary},
			{ID: 3, TeacherID: 2, SubjectID: 20, Level: models.QualificationSubstitute},
		},
		Availabilities: []models.TeacherAvailability{
			{ID: 1, TeacherID: 1, Weekday: 0, Period: 1, Kind: models.AvailabilityPreferred, EffectiveFrom: ref.AddDate(-1, 0, 0)},
		},
		ReferenceDate: ref,
	})
}

func TestScoreEmptyScheduleIsPerfect(t *testing.T) {
	b := NewScorer(scorerFixture()).Score(nil, 0)
	assert.Equal(t, 100.0, b.Total)
	assert.Equal(t, 100.0, b.Availability)
	assert.Equal(t, 100.0, b.Workload)
}

func TestScoreRubrics(t *testing.T) {
	snap := scorerFixture()
	entries := []models.ScheduleEntry{
		// MA on a PREFERRED morning slot by a PRIMARY teacher.
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		// Sport in the afternoon by a SUBSTITUTE teacher, no availability row.
		{ID: 2, ClassID: 1, TeacherID: 2, SubjectID: 20, TimeSlotID: 101, WeekType: models.WeekAll},
	}

	b := NewScorer(snap).Score(entries, 0)

	// Availability: one PREFERRED (100) + one unspecified (50).
	assert.InDelta(t, 75, b.Availability, 0.01)
	// Qualification: PRIMARY (100) + SUBSTITUTE (30).
	assert.InDelta(t, 65, b.Qualification, 0.01)
	// Pedagogy: core in the morning (100) + sport in the afternoon (100).
	assert.InDelta(t, 100, b.Pedagogical, 0.01)
	// Workload: both teachers below 5 lessons.
	assert.InDelta(t, 30, b.Workload, 0.01)
	// Efficiency: one day used.
	assert.InDelta(t, 10, b.Efficiency, 0.01)
	assert.InDelta(t, 100, b.Compliance, 0.01)

	expected := (75*25 + 65*20 + 100*20 + 30*15 + 10*10 + 100*10) / 100.0
	assert.InDelta(t, expected, b.Total, 0.01)
}

func TestScorePedagogicalPenalties(t *testing.T) {
	snap := scorerFixture()
	entries := []models.ScheduleEntry{
		// Core subject in the afternoon.
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 101, WeekType: models.WeekAll},
		// Sport in the morning.
		{ID: 2, ClassID: 1, TeacherID: 2, SubjectID: 20, TimeSlotID: 100, WeekType: models.WeekAll},
		// Neutral subject anywhere.
		{ID: 3, ClassID: 1, TeacherID: 1, SubjectID: 30, TimeSlotID: 102, WeekType: models.WeekAll},
	}

	b := NewScorer(snap).Score(entries, 0)
	assert.InDelta(t, (50+30+100)/3.0, b.Pedagogical, 0.01)
}

func TestScoreEfficiencyByDaysUsed(t *testing.T) {
	snap := scorerFixture()
	entries := []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		{ID: 2, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 102, WeekType: models.WeekAll},
		{ID: 3, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 103, WeekType: models.WeekAll},
		{ID: 4, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 104, WeekType: models.WeekAll},
	}

	b := NewScorer(snap).Score(entries, 0)
	assert.InDelta(t, 100, b.Efficiency, 0.01, "four distinct days score full marks")
}

func TestScoreComplianceDeductsPerViolation(t *testing.T) {
	snap := scorerFixture()
	entries := []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
	}

	assert.InDelta(t, 70, NewScorer(snap).Score(entries, 3).Compliance, 0.01)
	assert.InDelta(t, 0, NewScorer(snap).Score(entries, 11).Compliance, 0.01, "clamped at zero")
}

func TestScoreStaysInRange(t *testing.T) {
	snap := scorerFixture()
	entries := []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 2, SubjectID: 20, TimeSlotID: 100, WeekType: models.WeekAll},
	}
	b := NewScorer(snap).Score(entries, 50)
	require.GreaterOrEqual(t, b.Total, 0.0)
	require.LessOrEqual(t, b.Total, 100.0)
}
