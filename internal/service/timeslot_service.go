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

type timeslotRepository interface {
	List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id int64) (*models.TimeSlot, error)
	ExistsAt(ctx context.Context, day, period int, excludeID int64) (bool, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id int64) error
	CountReferences(ctx context.Context, id int64) (int, error)
}

// CreateTimeSlotRequest captures fields for creating time slots.
type CreateTimeSlotRequest struct {
	Day       int    `json:"day" validate:"required,min=1,max=5"`
	Period    int    `json:"period" validate:"required,min=1,max=8"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsBreak   bool   `json:"is_break"`
}

// TimeSlotService handles the weekly grid workflows.
type TimeSlotService struct {
	repo      timeslotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService creates a new time slot service.
func NewTimeSlotService(repo timeslotRepository, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, validator: validate, logger: logger}
}

// List returns time slots, optionally scoped to a day or teaching slots.
func (s *TimeSlotService) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, error) {
	slots, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// Get returns a time slot by id.
func (s *TimeSlotService) Get(ctx context.Context, id int64) (*models.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	return slot, nil
}

// Create adds a slot, enforcing (day, period) uniqueness and end > start.
func (s *TimeSlotService) Create(ctx context.Context, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if err := validateSlotTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsAt(ctx, req.Day, req.Period, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot position")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a time slot already exists at this day and period")
	}

	slot := &models.TimeSlot{Day: req.Day, Period: req.Period, StartTime: req.StartTime, EndTime: req.EndTime, IsBreak: req.IsBreak}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	return slot, nil
}

// Update replaces the mutable fields of a slot.
func (s *TimeSlotService) Update(ctx context.Context, id int64, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if err := validateSlotTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsAt(ctx, req.Day, req.Period, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot position")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a time slot already exists at this day and period")
	}

	slot.Day = req.Day
	slot.Period = req.Period
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	slot.IsBreak = req.IsBreak

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	return slot, nil
}

// Delete removes a slot unless schedule entries reference it.
func (s *TimeSlotService) Delete(ctx context.Context, id int64) error {
	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "time slot is still referenced by schedule entries")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	return nil
}

func validateSlotTimes(start, end string) error {
	startAt, err := time.Parse("15:04", start)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	endAt, err := time.Parse("15:04", end)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if !endAt.After(startAt) {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return nil
}
