package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grundschule/stundenplan-api/internal/models"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
)

type requirementRepository interface {
	ListByClass(ctx context.Context, classID int64) ([]models.ClassRequirement, error)
	Upsert(ctx context.Context, row *models.ClassRequirement) error
	Delete(ctx context.Context, id int64) error
}

type requirementClassReader interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

// UpsertRequirementRequest sets the weekly demand for a class-subject pair.
type UpsertRequirementRequest struct {
	ClassID      int64 `json:"class_id" validate:"required,min=1"`
	SubjectID    int64 `json:"subject_id" validate:"required,min=1"`
	HoursPerWeek int   `json:"hours_per_week" validate:"required,min=1,max=40"`
}

// RequirementService manages the demand rows the solver's equality
// constraints come from.
type RequirementService struct {
	repo      requirementRepository
	classes   requirementClassReader
	subjects  qualificationSubjectReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequirementService creates a new requirement service.
func NewRequirementService(repo requirementRepository, classes requirementClassReader, subjects qualificationSubjectReader, validate *validator.Validate, logger *zap.Logger) *RequirementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequirementService{repo: repo, classes: classes, subjects: subjects, validator: validate, logger: logger}
}

// ListByClass returns a class's requirement rows.
func (s *RequirementService) ListByClass(ctx context.Context, classID int64) ([]models.ClassRequirement, error) {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	rows, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}
	return rows, nil
}

// Upsert creates or overwrites the demand for a pair.
func (s *RequirementService) Upsert(ctx context.Context, req UpsertRequirementRequest) (*models.ClassRequirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	row := &models.ClassRequirement{ClassID: req.ClassID, SubjectID: req.SubjectID, HoursPerWeek: req.HoursPerWeek}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save requirement")
	}
	return row, nil
}

// Delete removes a requirement row.
func (s *RequirementService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete requirement")
	}
	return nil
}
