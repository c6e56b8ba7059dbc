package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// AvailabilityRepository provides persistence for teacher availability.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = "id, teacher_id, weekday, period, kind, effective_from, effective_until, reason, created_at, updated_at"

// ListByTeacher returns a teacher's availability rows.
func (r *AvailabilityRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAvailability, error) {
	var rows []models.TeacherAvailability
	query := "SELECT " + availabilityColumns + " FROM teacher_availability WHERE teacher_id = $1 ORDER BY weekday, period, effective_from"
	err := r.db.SelectContext(ctx, &rows, query, teacherID)
	return rows, err
}

// ListAll returns every availability row.
func (r *AvailabilityRepository) ListAll(ctx context.Context) ([]models.TeacherAvailability, error) {
	var rows []models.TeacherAvailability
	err := r.db.SelectContext(ctx, &rows, "SELECT "+availabilityColumns+" FROM teacher_availability ORDER BY teacher_id, weekday, period, effective_from")
	return rows, err
}

// FindByID returns one availability row.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id int64) (*models.TeacherAvailability, error) {
	var row models.TeacherAvailability
	if err := r.db.GetContext(ctx, &row, "SELECT "+availabilityColumns+" FROM teacher_availability WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistsAt checks the (teacher, weekday, period, effective_from)
// uniqueness invariant, optionally excluding a row.
func (r *AvailabilityRepository) ExistsAt(ctx context.Context, row models.TeacherAvailability) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM teacher_availability
		WHERE teacher_id = $1 AND weekday = $2 AND period = $3 AND effective_from = $4 AND id <> $5`
	err := r.db.GetContext(ctx, &count, query, row.TeacherID, row.Weekday, row.Period, row.EffectiveFrom, row.ID)
	return count > 0, err
}

// Create inserts an availability row and backfills the generated id.
func (r *AvailabilityRepository) Create(ctx context.Context, row *models.TeacherAvailability) error {
	query := `INSERT INTO teacher_availability (teacher_id, weekday, period, kind, effective_from, effective_until, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		row.TeacherID, row.Weekday, row.Period, row.Kind, row.EffectiveFrom, row.EffectiveUntil, row.Reason,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
}

// Update persists mutable availability fields.
func (r *AvailabilityRepository) Update(ctx context.Context, row *models.TeacherAvailability) error {
	query := `UPDATE teacher_availability SET weekday = $1, period = $2, kind = $3,
		effective_from = $4, effective_until = $5, reason = $6, updated_at = NOW() WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query, row.Weekday, row.Period, row.Kind, row.EffectiveFrom, row.EffectiveUntil, row.Reason, row.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes an availability row.
func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teacher_availability WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteByTeacher removes the rows of one teacher, limited to the given
// weekdays when any are passed, returning the count.
func (r *AvailabilityRepository) DeleteByTeacher(ctx context.Context, teacherID int64, weekdays []int) (int64, error) {
	query := "DELETE FROM teacher_availability WHERE teacher_id = $1"
	args := []interface{}{teacherID}
	if len(weekdays) > 0 {
		placeholders := make([]string, len(weekdays))
		for i, d := range weekdays {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, d)
		}
		query += " AND weekday IN (" + strings.Join(placeholders, ", ") + ")"
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
