package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// fixtureSnapshot builds the small domain the scenario tests run against:
// classes 1a and 2b, teachers MUE (Mathematik) and SCH (Deutsch), a break
// slot and two teaching slots on Monday.
func fixtureSnapshot() *snapshot.Snapshot {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	return snapshot.Build(snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, LastName: "Mueller", Abbreviation: "MUE", MaxHoursPerWeek: 28},
			{ID: 2, LastName: "Schmidt", Abbreviation: "SCH", MaxHoursPerWeek: 28},
		},
		Classes: []models.Class{
			{ID: 1, Name: "1a", Grade: 1, Size: 22},
			{ID: 2, Name: "2b", Grade: 2, Size: 24},
		},
		Subjects: []models.Subject{
			{ID: 10, Name: "Mathematik", Code: "MA"},
			{ID: 11, Name: "Deutsch", Code: "DE"},
			{ID: 12, Name: "Religion", Code: "REL"},
			{ID: 13, Name: "Ethik", Code: "ETH"},
		},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 1, Period: 2},
			{ID: 102, Day: 1, Period: 3, IsBreak: true},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
			{ID: 2, TeacherID: 1, SubjectID: 12, Level: models.QualificationSecondary},
			{ID: 3, TeacherID: 2, SubjectID: 11, Level: models.QualificationPrimary},
			{ID: 4, TeacherID: 2, SubjectID: 13, Level: models.QualificationSecondary},
		},
		Availabilities: []models.TeacherAvailability{
			{ID: 1, TeacherID: 2, Weekday: 0, Period: 2, Kind: models.AvailabilityBlocked, EffectiveFrom: ref.AddDate(-1, 0, 0)},
		},
		ReferenceDate: ref,
	})
}

func TestValidateCandidateBreakSlot(t *testing.T) {
	d := New(fixtureSnapshot())

	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 102, WeekType: models.WeekAll,
	}, nil)

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictBreak, conflicts[0].Kind)
}

func TestValidateCandidateWeekSplitDoesNotCollide(t *testing.T) {
	d := New(fixtureSnapshot())
	existing := []models.ScheduleEntry{
		{ID: 7, ClassID: 1, TeacherID: 1, SubjectID: 12, TimeSlotID: 100, WeekType: models.WeekA},
	}

	// Same class and slot on the B week: admissible.
	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 1, TeacherID: 2, SubjectID: 13, TimeSlotID: 100, WeekType: models.WeekB,
	}, existing)
	assert.Empty(t, conflicts)

	// ALL collides with A.
	conflicts = d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 1, TeacherID: 2, SubjectID: 13, TimeSlotID: 100, WeekType: models.WeekAll,
	}, existing)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictClass, conflicts[0].Kind)
}

func TestValidateCandidateTeacherDoubleBooked(t *testing.T) {
	d := New(fixtureSnapshot())
	existing := []models.ScheduleEntry{
		{ID: 5, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
	}

	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 2, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll,
	}, existing)

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, conflicts[0].Kind)
	require.NotNil(t, conflicts[0].ExistingEntryID)
	assert.Equal(t, int64(5), *conflicts[0].ExistingEntryID)
}

func TestValidateCandidateQualification(t *testing.T) {
	d := New(fixtureSnapshot())

	// SCH holds no Mathematik qualification.
	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 1, TeacherID: 2, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll,
	}, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictQualification, conflicts[0].Kind)
}

func TestValidateCandidateBlockedAvailability(t *testing.T) {
	d := New(fixtureSnapshot())

	// SCH is blocked Monday period 2.
	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 1, TeacherID: 2, SubjectID: 11, TimeSlotID: 101, WeekType: models.WeekAll,
	}, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictAvailability, conflicts[0].Kind)
}

func TestValidateCandidateRoomCollision(t *testing.T) {
	d := New(fixtureSnapshot())
	room := "Turnhalle"
	existing := []models.ScheduleEntry{
		{ID: 9, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, Room: &room, WeekType: models.WeekAll},
	}

	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 2, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, Room: &room, WeekType: models.WeekAll,
	}, existing)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictRoom, conflicts[0].Kind)
}

func TestValidateCandidateCheckOrderIsDeterministic(t *testing.T) {
	d := New(fixtureSnapshot())
	existing := []models.ScheduleEntry{
		{ID: 3, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 102, WeekType: models.WeekAll},
	}

	// Break slot plus missing qualification plus class collision: the
	// break check reports first, then qualification, then class.
	conflicts := d.ValidateCandidate(models.ScheduleEntry{
		ClassID: 1, TeacherID: 2, SubjectID: 10, TimeSlotID: 102, WeekType: models.WeekAll,
	}, existing)

	require.Len(t, conflicts, 3)
	assert.Equal(t, models.ConflictBreak, conflicts[0].Kind)
	assert.Equal(t, models.ConflictQualification, conflicts[1].Kind)
	assert.Equal(t, models.ConflictClass, conflicts[2].Kind)
}

func TestScanReportsBothSidesOfACollision(t *testing.T) {
	d := New(fixtureSnapshot())
	entries := []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		{ID: 2, ClassID: 2, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		{ID: 3, ClassID: 2, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, WeekType: models.WeekAll},
	}

	found := d.Scan(entries)
	require.Len(t, found, 3)
	assert.Equal(t, int64(1), found[0].Entry.ID)
	assert.Equal(t, int64(2), found[1].Entry.ID)
	// entry 3 collides with entry 2 on the class dimension
	assert.Equal(t, models.ConflictClass, found[2].Conflicts[0].Kind)
}

func TestScanCleanScheduleIsEmpty(t *testing.T) {
	d := New(fixtureSnapshot())
	entries := []models.ScheduleEntry{
		{ID: 1, ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		{ID: 2, ClassID: 2, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, WeekType: models.WeekAll},
	}
	assert.Empty(t, d.Scan(entries))
}

func TestScanFreshEntriesDoNotSelfCollide(t *testing.T) {
	d := New(fixtureSnapshot())
	// Zero-id entries, as extracted from the solver before persistence.
	entries := []models.ScheduleEntry{
		{ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		{ClassID: 2, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, WeekType: models.WeekAll},
	}
	assert.Empty(t, d.Scan(entries))
}
