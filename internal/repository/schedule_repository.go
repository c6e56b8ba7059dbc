package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// ScheduleRepository provides persistence for schedule entries, including
// the transactional bulk path the solver writes through.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "s.id, s.class_id, s.teacher_id, s.subject_id, s.timeslot_id, s.room, s.week_type, s.created_at, s.updated_at"

// List returns schedule entries with optional filtering and pagination.
// A week_type filter matches the requested type plus ALL.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error) {
	base := "FROM schedule_entries s JOIN timeslots ts ON ts.id = s.timeslot_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	addCond := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, len(args)+1))
		args = append(args, value)
	}

	if filter.ClassID > 0 {
		addCond("s.class_id = $%d", filter.ClassID)
	}
	if filter.TeacherID > 0 {
		addCond("s.teacher_id = $%d", filter.TeacherID)
	}
	if filter.SubjectID > 0 {
		addCond("s.subject_id = $%d", filter.SubjectID)
	}
	if filter.TimeSlotID > 0 {
		addCond("s.timeslot_id = $%d", filter.TimeSlotID)
	}
	if filter.Room != "" {
		addCond("s.room = $%d", filter.Room)
	}
	if filter.WeekType != "" && filter.WeekType != models.WeekAll {
		addCond("(s.week_type = $%d OR s.week_type = 'ALL')", filter.WeekType)
	}
	if filter.Day > 0 {
		addCond("ts.day = $%d", filter.Day)
	}
	if !filter.IncludeBreaks {
		conditions = append(conditions, "NOT ts.is_break")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY ts.day, ts.period, s.class_id, s.teacher_id LIMIT %d OFFSET %d",
		scheduleColumns, base, size, (page-1)*size)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListAll returns every schedule entry ordered by the grid position.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	query := "SELECT " + scheduleColumns + " FROM schedule_entries s JOIN timeslots ts ON ts.id = s.timeslot_id ORDER BY ts.day, ts.period, s.class_id, s.teacher_id"
	err := r.db.SelectContext(ctx, &entries, query)
	return entries, err
}

// FindByID returns one entry.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	query := "SELECT " + scheduleColumns + " FROM schedule_entries s JOIN timeslots ts ON ts.id = s.timeslot_id WHERE s.id = $1"
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts one entry and backfills the generated id.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	query := `INSERT INTO schedule_entries (class_id, teacher_id, subject_id, timeslot_id, room, week_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		entry.ClassID, entry.TeacherID, entry.SubjectID, entry.TimeSlotID, entry.Room, entry.WeekType,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

// Update persists mutable entry fields.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	query := `UPDATE schedule_entries SET class_id = $1, teacher_id = $2, subject_id = $3,
		timeslot_id = $4, room = $5, week_type = $6, updated_at = NOW() WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		entry.ClassID, entry.TeacherID, entry.SubjectID, entry.TimeSlotID, entry.Room, entry.WeekType, entry.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes one entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM schedule_entries WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// BeginTxx opens a transaction with the given options.
func (r *ScheduleRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// DeleteAllTx clears the whole schedule inside the caller's transaction.
func (r *ScheduleRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM schedule_entries")
	return err
}

// BulkCreateTx inserts entries inside the caller's transaction, assigning
// ids in input order.
func (r *ScheduleRepository) BulkCreateTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) ([]models.ScheduleEntry, error) {
	out := make([]models.ScheduleEntry, 0, len(entries))
	query := `INSERT INTO schedule_entries (class_id, teacher_id, subject_id, timeslot_id, room, week_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	for _, entry := range entries {
		if err := tx.QueryRowxContext(ctx, query,
			entry.ClassID, entry.TeacherID, entry.SubjectID, entry.TimeSlotID, entry.Room, entry.WeekType,
		).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
