package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grundschule/stundenplan-api/internal/models"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
)

type availabilityRepository interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAvailability, error)
	FindByID(ctx context.Context, id int64) (*models.TeacherAvailability, error)
	ExistsAt(ctx context.Context, row models.TeacherAvailability) (bool, error)
	Create(ctx context.Context, row *models.TeacherAvailability) error
	Update(ctx context.Context, row *models.TeacherAvailability) error
	Delete(ctx context.Context, id int64) error
}

type availabilityTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

// UpsertAvailabilityRequest captures one availability cell.
type UpsertAvailabilityRequest struct {
	TeacherID      int64   `json:"teacher_id" validate:"required,min=1"`
	Weekday        int     `json:"weekday" validate:"min=0,max=4"`
	Period         int     `json:"period" validate:"required,min=1,max=8"`
	Kind           string  `json:"kind" validate:"required"`
	EffectiveFrom  string  `json:"effective_from" validate:"required"`
	EffectiveUntil *string `json:"effective_until"`
	Reason         *string `json:"reason"`
}

// AvailabilityService handles teacher availability workflows.
type AvailabilityService struct {
	repo      availabilityRepository
	teachers  availabilityTeacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(repo availabilityRepository, teachers availabilityTeacherReader, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// ListByTeacher returns a teacher's availability rows.
func (s *AvailabilityService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAvailability, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	rows, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return rows, nil
}

// Create adds an availability cell, enforcing the per-window uniqueness
// invariant.
func (s *AvailabilityService) Create(ctx context.Context, req UpsertAvailabilityRequest) (*models.TeacherAvailability, error) {
	row, err := s.rowFromRequest(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsAt(ctx, *row)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability cell")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an availability row already exists for this cell and start date")
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
	}
	return row, nil
}

// Update replaces the mutable fields of an availability row.
func (s *AvailabilityService) Update(ctx context.Context, id int64, req UpsertAvailabilityRequest) (*models.TeacherAvailability, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	req.TeacherID = existing.TeacherID

	row, err := s.rowFromRequest(ctx, req, id)
	if err != nil {
		return nil, err
	}
	duplicate, err := s.repo.ExistsAt(ctx, *row)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability cell")
	}
	if duplicate {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an availability row already exists for this cell and start date")
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	return row, nil
}

// Delete removes an availability row.
func (s *AvailabilityService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability")
	}
	return nil
}

func (s *AvailabilityService) rowFromRequest(ctx context.Context, req UpsertAvailabilityRequest, id int64) (*models.TeacherAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	kind := models.AvailabilityKind(req.Kind)
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be AVAILABLE, BLOCKED or PREFERRED")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	from, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "effective_from must be YYYY-MM-DD")
	}
	var until *time.Time
	if req.EffectiveUntil != nil {
		parsed, err := time.Parse("2006-01-02", *req.EffectiveUntil)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "effective_until must be YYYY-MM-DD")
		}
		if parsed.Before(from) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "effective_until must not precede effective_from")
		}
		until = &parsed
	}

	return &models.TeacherAvailability{
		ID:             id,
		TeacherID:      req.TeacherID,
		Weekday:        req.Weekday,
		Period:         req.Period,
		Kind:           kind,
		EffectiveFrom:  from,
		EffectiveUntil: until,
		Reason:         req.Reason,
	}, nil
}
