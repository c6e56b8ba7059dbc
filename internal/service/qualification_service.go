package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/grundschule/stundenplan-api/internal/models"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
)

type qualificationRepository interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherSubject, error)
	FindByID(ctx context.Context, id int64) (*models.TeacherSubject, error)
	ExistsForPair(ctx context.Context, teacherID, subjectID, excludeID int64) (bool, error)
	Create(ctx context.Context, row *models.TeacherSubject) error
	Update(ctx context.Context, row *models.TeacherSubject) error
	Delete(ctx context.Context, id int64) error
}

type qualificationSubjectReader interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

// UpsertQualificationRequest captures one teacher-subject qualification.
type UpsertQualificationRequest struct {
	TeacherID       int64   `json:"teacher_id" validate:"required,min=1"`
	SubjectID       int64   `json:"subject_id" validate:"required,min=1"`
	Level           string  `json:"level" validate:"required"`
	Grades          []int   `json:"grades" validate:"omitempty,dive,min=1,max=4"`
	MaxHoursPerWeek *int    `json:"max_hours_per_week" validate:"omitempty,min=1,max=30"`
	CertifiedFrom   *string `json:"certified_from"`
	CertifiedUntil  *string `json:"certified_until"`
}

// QualificationService handles teacher-subject qualification workflows.
type QualificationService struct {
	repo      qualificationRepository
	teachers  availabilityTeacherReader
	subjects  qualificationSubjectReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQualificationService creates a new qualification service.
func NewQualificationService(repo qualificationRepository, teachers availabilityTeacherReader, subjects qualificationSubjectReader, validate *validator.Validate, logger *zap.Logger) *QualificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QualificationService{repo: repo, teachers: teachers, subjects: subjects, validator: validate, logger: logger}
}

// ListByTeacher returns a teacher's qualifications.
func (s *QualificationService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherSubject, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	rows, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list qualifications")
	}
	return rows, nil
}

// Create adds a qualification, enforcing one row per (teacher, subject).
func (s *QualificationService) Create(ctx context.Context, req UpsertQualificationRequest) (*models.TeacherSubject, error) {
	row, err := s.rowFromRequest(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsForPair(ctx, row.TeacherID, row.SubjectID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check qualification pair")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a qualification already exists for this teacher and subject")
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create qualification")
	}
	return row, nil
}

// Update replaces the mutable fields of a qualification.
func (s *QualificationService) Update(ctx context.Context, id int64, req UpsertQualificationRequest) (*models.TeacherSubject, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "qualification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qualification")
	}
	req.TeacherID = existing.TeacherID
	req.SubjectID = existing.SubjectID

	row, err := s.rowFromRequest(ctx, req, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update qualification")
	}
	return row, nil
}

// Delete removes a qualification row.
func (s *QualificationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "qualification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete qualification")
	}
	return nil
}

func (s *QualificationService) rowFromRequest(ctx context.Context, req UpsertQualificationRequest, id int64) (*models.TeacherSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid qualification payload")
	}
	level := models.QualificationLevel(req.Level)
	if !level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "level must be PRIMARY, SECONDARY or SUBSTITUTE")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	var from, until *time.Time
	if req.CertifiedFrom != nil {
		parsed, err := time.Parse("2006-01-02", *req.CertifiedFrom)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "certified_from must be YYYY-MM-DD")
		}
		from = &parsed
	}
	if req.CertifiedUntil != nil {
		parsed, err := time.Parse("2006-01-02", *req.CertifiedUntil)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "certified_until must be YYYY-MM-DD")
		}
		if from != nil && parsed.Before(*from) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "certified_until must not precede certified_from")
		}
		until = &parsed
	}

	grades := make(pq.Int64Array, 0, len(req.Grades))
	seen := make(map[int]bool, len(req.Grades))
	for _, g := range req.Grades {
		if !seen[g] {
			grades = append(grades, int64(g))
			seen[g] = true
		}
	}

	return &models.TeacherSubject{
		ID:              id,
		TeacherID:       req.TeacherID,
		SubjectID:       req.SubjectID,
		Level:           level,
		Grades:          grades,
		MaxHoursPerWeek: req.MaxHoursPerWeek,
		CertifiedFrom:   from,
		CertifiedUntil:  until,
	}, nil
}
