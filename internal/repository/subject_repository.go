package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// SubjectRepository provides persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "id, name, code, color, created_at, updated_at"

// List returns subjects with optional search and pagination.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += " AND (name ILIKE $1 OR code ILIKE $1)"
		args = append(args, "%"+filter.Search+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY name LIMIT %d OFFSET %d", subjectColumns, base, size, (page-1)*size)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

// ListAll returns every subject, ordered by id.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	err := r.db.SelectContext(ctx, &subjects, "SELECT "+subjectColumns+" FROM subjects ORDER BY id")
	return subjects, err
}

// FindByID returns one subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, "SELECT "+subjectColumns+" FROM subjects WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks code uniqueness, optionally excluding a row.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM subjects WHERE UPPER(code) = UPPER($1) AND id <> $2", code, excludeID)
	return count > 0, err
}

// Create inserts a subject and backfills the generated id.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := `INSERT INTO subjects (name, code, color, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, subject.Name, subject.Code, subject.Color).
		Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
}

// Update persists mutable subject fields.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	query := `UPDATE subjects SET name = $1, code = $2, color = $3, updated_at = NOW() WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, subject.Name, subject.Code, subject.Color, subject.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a subject row.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CountReferences counts schedule entries, qualifications and requirements
// still pointing at the subject.
func (r *SubjectRepository) CountReferences(ctx context.Context, id int64) (int, error) {
	var count int
	query := `SELECT
		(SELECT COUNT(*) FROM schedule_entries WHERE subject_id = $1) +
		(SELECT COUNT(*) FROM teacher_subjects WHERE subject_id = $1) +
		(SELECT COUNT(*) FROM class_requirements WHERE subject_id = $1)`
	err := r.db.GetContext(ctx, &count, query, id)
	return count, err
}
