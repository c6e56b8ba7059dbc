package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// QualificationRepository provides persistence for teacher-subject
// qualifications.
type QualificationRepository struct {
	db *sqlx.DB
}

// NewQualificationRepository creates a new qualification repository.
func NewQualificationRepository(db *sqlx.DB) *QualificationRepository {
	return &QualificationRepository{db: db}
}

const qualificationColumns = "id, teacher_id, subject_id, level, grades, max_hours_per_week, certified_from, certified_until, created_at, updated_at"

// ListByTeacher returns a teacher's qualifications.
func (r *QualificationRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherSubject, error) {
	var rows []models.TeacherSubject
	query := "SELECT " + qualificationColumns + " FROM teacher_subjects WHERE teacher_id = $1 ORDER BY subject_id"
	err := r.db.SelectContext(ctx, &rows, query, teacherID)
	return rows, err
}

// ListAll returns every qualification row.
func (r *QualificationRepository) ListAll(ctx context.Context) ([]models.TeacherSubject, error) {
	var rows []models.TeacherSubject
	err := r.db.SelectContext(ctx, &rows, "SELECT "+qualificationColumns+" FROM teacher_subjects ORDER BY teacher_id, subject_id")
	return rows, err
}

// FindByID returns one qualification row.
func (r *QualificationRepository) FindByID(ctx context.Context, id int64) (*models.TeacherSubject, error) {
	var row models.TeacherSubject
	if err := r.db.GetContext(ctx, &row, "SELECT "+qualificationColumns+" FROM teacher_subjects WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistsForPair checks the one-row-per-(teacher, subject) invariant.
func (r *QualificationRepository) ExistsForPair(ctx context.Context, teacherID, subjectID, excludeID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 AND id <> $3"
	err := r.db.GetContext(ctx, &count, query, teacherID, subjectID, excludeID)
	return count > 0, err
}

// Create inserts a qualification and backfills the generated id.
func (r *QualificationRepository) Create(ctx context.Context, row *models.TeacherSubject) error {
	query := `INSERT INTO teacher_subjects (teacher_id, subject_id, level, grades, max_hours_per_week, certified_from, certified_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		row.TeacherID, row.SubjectID, row.Level, row.Grades, row.MaxHoursPerWeek, row.CertifiedFrom, row.CertifiedUntil,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
}

// Update persists mutable qualification fields.
func (r *QualificationRepository) Update(ctx context.Context, row *models.TeacherSubject) error {
	query := `UPDATE teacher_subjects SET level = $1, grades = $2, max_hours_per_week = $3,
		certified_from = $4, certified_until = $5, updated_at = NOW() WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, row.Level, row.Grades, row.MaxHoursPerWeek, row.CertifiedFrom, row.CertifiedUntil, row.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a qualification row.
func (r *QualificationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teacher_subjects WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
