package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// TeacherRepository provides persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, first_name, last_name, abbreviation, max_hours_per_week, is_part_time, created_at, updated_at"

// List returns teachers with optional filtering and pagination.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR abbreviation ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.PartTime != nil {
		conditions = append(conditions, fmt.Sprintf("is_part_time = $%d", len(args)+1))
		args = append(args, *filter.PartTime)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"last_name": true, "abbreviation": true, "max_hours_per_week": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", teacherColumns, base, sortBy, order, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

// ListAll returns every teacher, ordered by id.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := r.db.SelectContext(ctx, &teachers, "SELECT "+teacherColumns+" FROM teachers ORDER BY id")
	return teachers, err
}

// FindByID returns one teacher.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, "SELECT "+teacherColumns+" FROM teachers WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByAbbreviation checks short-code uniqueness, optionally excluding a row.
func (r *TeacherRepository) ExistsByAbbreviation(ctx context.Context, abbreviation string, excludeID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM teachers WHERE UPPER(abbreviation) = UPPER($1) AND id <> $2", abbreviation, excludeID)
	return count > 0, err
}

// Create inserts a teacher and backfills the generated id.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	query := `INSERT INTO teachers (first_name, last_name, abbreviation, max_hours_per_week, is_part_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		teacher.FirstName, teacher.LastName, teacher.Abbreviation, teacher.MaxHoursPerWeek, teacher.IsPartTime,
	).Scan(&teacher.ID, &teacher.CreatedAt, &teacher.UpdatedAt)
}

// Update persists mutable teacher fields.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	query := `UPDATE teachers SET first_name = $1, last_name = $2, abbreviation = $3,
		max_hours_per_week = $4, is_part_time = $5, updated_at = NOW() WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		teacher.FirstName, teacher.LastName, teacher.Abbreviation, teacher.MaxHoursPerWeek, teacher.IsPartTime, teacher.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a teacher row.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CountReferences counts schedule entries, availabilities and
// qualifications still pointing at the teacher.
func (r *TeacherRepository) CountReferences(ctx context.Context, id int64) (int, error) {
	var count int
	query := `SELECT
		(SELECT COUNT(*) FROM schedule_entries WHERE teacher_id = $1) +
		(SELECT COUNT(*) FROM teacher_availability WHERE teacher_id = $1) +
		(SELECT COUNT(*) FROM teacher_subjects WHERE teacher_id = $1)`
	err := r.db.GetContext(ctx, &count, query, id)
	return count, err
}
