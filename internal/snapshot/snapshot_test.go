package snapshot

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/models"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestBuildTeachingSlotsSortedAndBreaksExcluded(t *testing.T) {
	snap := Build(Input{
		TimeSlots: []models.TimeSlot{
			{ID: 3, Day: 2, Period: 1},
			{ID: 1, Day: 1, Period: 2},
			{ID: 2, Day: 1, Period: 1},
			{ID: 4, Day: 1, Period: 3, IsBreak: true},
		},
		ReferenceDate: date("2026-08-03"),
	})

	slots := snap.TeachingSlots()
	require.Len(t, slots, 3)
	assert.Equal(t, int64(2), slots[0].ID)
	assert.Equal(t, int64(1), slots[1].ID)
	assert.Equal(t, int64(3), slots[2].ID)

	slot, ok := snap.TimeSlot(4)
	require.True(t, ok)
	assert.True(t, slot.IsBreak)
}

func TestAvailabilityResolvedAtReferenceDate(t *testing.T) {
	until := date("2026-06-30")
	snap := Build(Input{
		Teachers: []models.Teacher{{ID: 1}},
		Availabilities: []models.TeacherAvailability{
			// expired window
			{ID: 1, TeacherID: 1, Weekday: 0, Period: 1, Kind: models.AvailabilityBlocked, EffectiveFrom: date("2026-01-01"), EffectiveUntil: &until},
			// active window, later effective_from wins over an earlier one
			{ID: 2, TeacherID: 1, Weekday: 0, Period: 2, Kind: models.AvailabilityAvailable, EffectiveFrom: date("2026-01-01")},
			{ID: 3, TeacherID: 1, Weekday: 0, Period: 2, Kind: models.AvailabilityPreferred, EffectiveFrom: date("2026-08-01")},
		},
		ReferenceDate: date("2026-08-03"),
	})

	_, ok := snap.Availability(1, 0, 1)
	assert.False(t, ok, "expired window must resolve to absent")

	kind, ok := snap.Availability(1, 0, 2)
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityPreferred, kind)

	assert.False(t, snap.Blocked(1, 0, 1))
}

func TestQualificationExpiryIsStrict(t *testing.T) {
	ref := date("2026-08-03")
	expiresToday := date("2026-08-03")
	expiresLater := date("2026-12-31")

	snap := Build(Input{
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary, CertifiedUntil: &expiresToday},
			{ID: 2, TeacherID: 2, SubjectID: 10, Level: models.QualificationSecondary, CertifiedUntil: &expiresLater},
		},
		ReferenceDate: ref,
	})

	_, ok := snap.Qualification(1, 10)
	assert.False(t, ok, "certification expiring on the reference date counts as expired")

	q, ok := snap.Qualification(2, 10)
	require.True(t, ok)
	assert.Equal(t, models.QualificationSecondary, q.Level)
}

func TestQualifiedForSubjectOrderedByLevel(t *testing.T) {
	snap := Build(Input{
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 5, SubjectID: 10, Level: models.QualificationSubstitute},
			{ID: 2, TeacherID: 3, SubjectID: 10, Level: models.QualificationPrimary},
			{ID: 3, TeacherID: 4, SubjectID: 10, Level: models.QualificationSecondary},
		},
		ReferenceDate: date("2026-08-03"),
	})

	rows := snap.QualifiedForSubject(10)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].TeacherID)
	assert.Equal(t, int64(4), rows[1].TeacherID)
	assert.Equal(t, int64(5), rows[2].TeacherID)
}

func TestCanTeachHonoursGradeMask(t *testing.T) {
	snap := Build(Input{
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary, Grades: pq.Int64Array{1, 2}},
			{ID: 2, TeacherID: 2, SubjectID: 10, Level: models.QualificationPrimary},
		},
		ReferenceDate: date("2026-08-03"),
	})

	assert.True(t, snap.CanTeach(1, 10, 1))
	assert.False(t, snap.CanTeach(1, 10, 3))
	assert.True(t, snap.CanTeach(2, 10, 4), "empty grade list means no restriction")
	assert.False(t, snap.CanTeach(3, 10, 1), "unknown teacher")
}

func TestDemandDefaultsToZero(t *testing.T) {
	snap := Build(Input{
		Requirements:  []models.ClassRequirement{{ID: 1, ClassID: 1, SubjectID: 10, HoursPerWeek: 4}},
		ReferenceDate: date("2026-08-03"),
	})

	assert.Equal(t, 4, snap.Demand(1, 10))
	assert.Equal(t, 0, snap.Demand(1, 99))
	assert.True(t, snap.HasDemand())
}
