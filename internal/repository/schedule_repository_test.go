package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/stundenplan-api/internal/models"
)

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "class_id", "teacher_id", "subject_id", "timeslot_id", "room", "week_type", "created_at", "updated_at"})
}

func TestScheduleRepositoryListFiltersWeekType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("(s.week_type = $1 OR s.week_type = 'ALL')")).
		WithArgs("A").
		WillReturnRows(scheduleRows().AddRow(1, 1, 1, 10, 100, nil, "A", time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.ScheduleFilter{WeekType: models.WeekA, IncludeBreaks: true})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkCreateTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO schedule_entries").
		WithArgs(int64(1), int64(2), int64(10), int64(100), nil, "ALL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO schedule_entries").
		WithArgs(int64(1), int64(3), int64(11), int64(101), nil, "ALL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(12, time.Now(), time.Now()))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	created, err := repo.BulkCreateTx(context.Background(), tx, []models.ScheduleEntry{
		{ClassID: 1, TeacherID: 2, SubjectID: 10, TimeSlotID: 100, WeekType: models.WeekAll},
		{ClassID: 1, TeacherID: 3, SubjectID: 11, TimeSlotID: 101, WeekType: models.WeekAll},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, created, 2)
	assert.Equal(t, int64(11), created[0].ID)
	assert.Equal(t, int64(12), created[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteAllTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries")).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectRollback()

	tx, err := repo.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteAllTx(context.Background(), tx))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
