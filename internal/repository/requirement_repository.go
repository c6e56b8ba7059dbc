package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// RequirementRepository provides persistence for per-class weekly subject
// demand.
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository creates a new requirement repository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = "id, class_id, subject_id, hours_per_week, created_at, updated_at"

// ListByClass returns a class's requirement rows.
func (r *RequirementRepository) ListByClass(ctx context.Context, classID int64) ([]models.ClassRequirement, error) {
	var rows []models.ClassRequirement
	query := "SELECT " + requirementColumns + " FROM class_requirements WHERE class_id = $1 ORDER BY subject_id"
	err := r.db.SelectContext(ctx, &rows, query, classID)
	return rows, err
}

// ListAll returns every requirement row.
func (r *RequirementRepository) ListAll(ctx context.Context) ([]models.ClassRequirement, error) {
	var rows []models.ClassRequirement
	err := r.db.SelectContext(ctx, &rows, "SELECT "+requirementColumns+" FROM class_requirements ORDER BY class_id, subject_id")
	return rows, err
}

// Upsert creates or overwrites the demand for a class-subject pair.
func (r *RequirementRepository) Upsert(ctx context.Context, row *models.ClassRequirement) error {
	query := `INSERT INTO class_requirements (class_id, subject_id, hours_per_week, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (class_id, subject_id)
		DO UPDATE SET hours_per_week = EXCLUDED.hours_per_week, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, row.ClassID, row.SubjectID, row.HoursPerWeek).
		Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
}

// Delete removes a requirement row.
func (r *RequirementRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM class_requirements WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
