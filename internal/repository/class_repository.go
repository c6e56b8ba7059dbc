package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// ClassRepository provides persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = "id, name, grade, size, home_room, created_at, updated_at"

// List returns classes with optional filtering and pagination.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	base := "FROM classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Grade > 0 {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY grade, name LIMIT %d OFFSET %d", classColumns, base, size, (page-1)*size)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

// ListAll returns every class, ordered by id.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.SelectContext(ctx, &classes, "SELECT "+classColumns+" FROM classes ORDER BY id")
	return classes, err
}

// FindByID returns one class.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	var class models.Class
	if err := r.db.GetContext(ctx, &class, "SELECT "+classColumns+" FROM classes WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByName checks label uniqueness, optionally excluding a row.
func (r *ClassRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM classes WHERE LOWER(name) = LOWER($1) AND id <> $2", name, excludeID)
	return count > 0, err
}

// Create inserts a class and backfills the generated id.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	query := `INSERT INTO classes (name, grade, size, home_room, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, class.Name, class.Grade, class.Size, class.HomeRoom).
		Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt)
}

// Update persists mutable class fields.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	query := `UPDATE classes SET name = $1, grade = $2, size = $3, home_room = $4, updated_at = NOW() WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, class.Name, class.Grade, class.Size, class.HomeRoom, class.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a class row.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM classes WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CountReferences counts schedule entries and requirements still pointing
// at the class.
func (r *ClassRepository) CountReferences(ctx context.Context, id int64) (int, error) {
	var count int
	query := `SELECT
		(SELECT COUNT(*) FROM schedule_entries WHERE class_id = $1) +
		(SELECT COUNT(*) FROM class_requirements WHERE class_id = $1)`
	err := r.db.GetContext(ctx, &count, query, id)
	return count, err
}
