package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/dto"
	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
)

type memoryScheduleRepo struct {
	db      *sqlx.DB
	entries []models.ScheduleEntry
	nextID  int64
}

func (m *memoryScheduleRepo) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error) {
	return m.entries, len(m.entries), nil
}

func (m *memoryScheduleRepo) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	return m.entries, nil
}

func (m *memoryScheduleRepo) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryScheduleRepo) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryScheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = *entry
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryScheduleRepo) Delete(ctx context.Context, id int64) error {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryScheduleRepo) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, nil)
}

func (m *memoryScheduleRepo) BulkCreateTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) ([]models.ScheduleEntry, error) {
	out := make([]models.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		m.nextID++
		e.ID = m.nextID
		m.entries = append(m.entries, e)
		out = append(out, e)
	}
	return out, nil
}

func scheduleFixtureInput() snapshot.Input {
	ref, _ := time.Parse("2006-01-02", "2026-08-03")
	return snapshot.Input{
		Teachers: []models.Teacher{
			{ID: 1, FirstName: "Maria", LastName: "Mueller", Abbreviation: "MUE", MaxHoursPerWeek: 28},
			{ID: 2, FirstName: "Jonas", LastName: "Schulz", Abbreviation: "SCH", MaxHoursPerWeek: 28},
		},
		Classes: []models.Class{
			{ID: 1, Name: "1a", Grade: 1},
			{ID: 2, Name: "2b", Grade: 2},
		},
		Subjects: []models.Subject{
			{ID: 10, Name: "Mathematik", Code: "MA"},
			{ID: 11, Name: "Deutsch", Code: "DE"},
		},
		TimeSlots: []models.TimeSlot{
			{ID: 100, Day: 1, Period: 1},
			{ID: 101, Day: 1, Period: 2},
			{ID: 102, Day: 1, Period: 3, IsBreak: true},
		},
		Qualifications: []models.TeacherSubject{
			{ID: 1, TeacherID: 1, SubjectID: 10, Level: models.QualificationPrimary},
			{ID: 2, TeacherID: 2, SubjectID: 11, Level: models.QualificationPrimary},
		},
		ReferenceDate: ref,
	}
}

func newScheduleFixture(t *testing.T) (*ScheduleService, *memoryScheduleRepo, sqlmock.Sqlmock) {
	rawDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	repo := &memoryScheduleRepo{db: sqlx.NewDb(rawDB, "sqlmock")}
	svc := NewScheduleService(repo, stubDomain{input: scheduleFixtureInput()}, NewCacheService(nil, 0, nil, nil), nil, nil)
	return svc, repo, mock
}

func TestScheduleServiceValidateBreakSlot(t *testing.T) {
	svc, _, _ := newScheduleFixture(t)

	result, err := svc.Validate(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 102,
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictBreak, result.Conflicts[0].Kind)
}

func TestScheduleServiceValidateUnknownReference(t *testing.T) {
	svc, _, _ := newScheduleFixture(t)

	_, err := svc.Validate(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 99, TeacherID: 1, SubjectID: 10, TimeSlotID: 100,
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestScheduleServiceCreateRejectsConflicts(t *testing.T) {
	svc, repo, _ := newScheduleFixture(t)

	first, err := svc.Create(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	// Same teacher, same slot, other class.
	_, err = svc.Create(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 2, TeacherID: 1, SubjectID: 10, TimeSlotID: 100,
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Len(t, repo.entries, 1, "conflicting entry must not be written")
}

func TestScheduleServiceValidateAgreesWithScan(t *testing.T) {
	svc, repo, _ := newScheduleFixture(t)

	candidate := dto.ScheduleEntryRequest{ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100}
	result, err := svc.Validate(context.Background(), candidate)
	require.NoError(t, err)
	require.True(t, result.Valid)

	_, err = svc.Create(context.Background(), candidate)
	require.NoError(t, err)

	scan, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scan, "validate=true must imply an empty scan after insert")
	assert.Len(t, repo.entries, 1)
}

func TestScheduleServiceBulkCreateIsAtomic(t *testing.T) {
	svc, repo, _ := newScheduleFixture(t)

	_, err := svc.BulkCreate(context.Background(), dto.BulkScheduleRequest{Entries: []dto.ScheduleEntryRequest{
		{ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100},
		// Collides with the first candidate (same teacher, same slot).
		{ClassID: 2, TeacherID: 1, SubjectID: 10, TimeSlotID: 100},
	}})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Empty(t, repo.entries, "atomic bulk create writes nothing on conflict")
}

func TestScheduleServiceBulkCreateSuccess(t *testing.T) {
	svc, repo, mock := newScheduleFixture(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	created, err := svc.BulkCreate(context.Background(), dto.BulkScheduleRequest{Entries: []dto.ScheduleEntryRequest{
		{ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100},
		{ClassID: 1, TeacherID: 2, SubjectID: 11, TimeSlotID: 101},
	}})
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Len(t, repo.entries, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceWeekSplitCreate(t *testing.T) {
	svc, _, _ := newScheduleFixture(t)

	_, err := svc.Create(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100, WeekType: "A",
	})
	require.NoError(t, err)

	// Same class and slot, B week: no collision.
	_, err = svc.Create(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 1, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, WeekType: "B",
	})
	require.NoError(t, err)

	// ALL collides with both.
	_, err = svc.Create(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 1, TeacherID: 2, SubjectID: 11, TimeSlotID: 100, WeekType: "ALL",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestScheduleServiceExportClassCSV(t *testing.T) {
	svc, _, _ := newScheduleFixture(t)

	_, err := svc.Create(context.Background(), dto.ScheduleEntryRequest{
		ClassID: 1, TeacherID: 1, SubjectID: 10, TimeSlotID: 100,
	})
	require.NoError(t, err)

	data, contentType, err := svc.ExportClass(context.Background(), 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(data)
	assert.True(t, strings.HasPrefix(body, "Stunde,Montag"), "grid header expected, got %q", body)
	assert.Contains(t, body, "MA (MUE)")
}

func TestScheduleServiceExportUnknownClass(t *testing.T) {
	svc, _, _ := newScheduleFixture(t)
	_, _, err := svc.ExportClass(context.Background(), 42, "csv")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
