package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/grundschule/stundenplan-api/internal/conflict"
	"github.com/grundschule/stundenplan-api/internal/dto"
	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
	"github.com/grundschule/stundenplan-api/pkg/export"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error)
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id int64) error
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	BulkCreateTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) ([]models.ScheduleEntry, error)
}

// domainReader loads the entity sets a snapshot is built from.
type domainReader interface {
	LoadDomain(ctx context.Context) (*snapshot.Input, error)
}

// ScheduleService owns the manual-edit surface: CRUD with conflict
// checking, candidate validation, the full scan, and timetable exports.
type ScheduleService struct {
	repo      scheduleRepository
	domain    domainReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService wires the schedule service.
func NewScheduleService(repo scheduleRepository, domain domainReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, domain: domain, cache: cache, validator: validate, logger: logger}
}

// List returns schedule entries under the filter.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	return entries, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one entry.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	return entry, nil
}

// Validate checks one candidate against the persisted schedule. It only
// errors on broken references or storage failures; conflicts are values.
func (s *ScheduleService) Validate(ctx context.Context, req dto.ScheduleEntryRequest) (*dto.ValidationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	candidate := req.Entry()

	snap, existing, err := s.loadContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(snap, candidate); err != nil {
		return nil, err
	}

	conflicts := conflict.New(snap).ValidateCandidate(candidate, existing)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return &dto.ValidationResponse{Valid: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// Scan lists every persisted entry that participates in a conflict.
func (s *ScheduleService) Scan(ctx context.Context) ([]models.EntryConflicts, error) {
	var cached []models.EntryConflicts
	if s.cache.GetJSON(ctx, cacheKeyScan, &cached) {
		return cached, nil
	}

	snap, existing, err := s.loadContext(ctx)
	if err != nil {
		return nil, err
	}
	found := conflict.New(snap).Scan(existing)
	if found == nil {
		found = []models.EntryConflicts{}
	}
	s.cache.SetJSON(ctx, cacheKeyScan, found)
	return found, nil
}

// Create validates and persists one entry.
func (s *ScheduleService) Create(ctx context.Context, req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	validation, err := s.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, conflictError(validation.Conflicts)
	}

	entry := req.Entry()
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create schedule entry")
	}
	s.cache.InvalidateSchedule(ctx)
	return &entry, nil
}

// Update validates and persists changes to one entry.
func (s *ScheduleService) Update(ctx context.Context, id int64, req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate := req.Entry()
	candidate.ID = existing.ID

	snap, all, err := s.loadContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(snap, candidate); err != nil {
		return nil, err
	}
	if conflicts := conflict.New(snap).ValidateCandidate(candidate, all); len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}

	if err := s.repo.Update(ctx, &candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update schedule entry")
	}
	s.cache.InvalidateSchedule(ctx)
	return &candidate, nil
}

// Delete removes one entry.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete schedule entry")
	}
	s.cache.InvalidateSchedule(ctx)
	return nil
}

// BulkCreate validates every candidate against the persisted schedule and
// the other candidates, then writes all of them in one transaction.
// Nothing is written when any candidate fails.
func (s *ScheduleService) BulkCreate(ctx context.Context, req dto.BulkScheduleRequest) ([]models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}

	snap, existing, err := s.loadContext(ctx)
	if err != nil {
		return nil, err
	}

	detector := conflict.New(snap)
	pool := make([]models.ScheduleEntry, 0, len(existing)+len(req.Entries))
	pool = append(pool, existing...)

	candidates := make([]models.ScheduleEntry, 0, len(req.Entries))
	for i, entryReq := range req.Entries {
		candidate := entryReq.Entry()
		if err := s.checkReferences(snap, candidate); err != nil {
			return nil, err
		}
		if conflicts := detector.ValidateCandidate(candidate, pool); len(conflicts) > 0 {
			return nil, appErrors.Wrap(conflictError(conflicts), appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				fmt.Sprintf("bulk entry %d is inadmissible", i))
		}
		pool = append(pool, candidate)
		candidates = append(candidates, candidate)
	}

	tx, err := s.repo.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin transaction")
	}
	created, err := s.repo.BulkCreateTx(ctx, tx, candidates)
	if err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist bulk entries")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit bulk entries")
	}
	s.cache.InvalidateSchedule(ctx)
	return created, nil
}

// ExportClass renders a class timetable as CSV or PDF.
func (s *ScheduleService) ExportClass(ctx context.Context, classID int64, format string) ([]byte, string, error) {
	snap, entries, err := s.loadContext(ctx)
	if err != nil {
		return nil, "", err
	}
	class, ok := snap.Class(classID)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	grid := export.NewTimetable("Klasse " + class.Name)
	for _, e := range entries {
		if e.ClassID != classID {
			continue
		}
		slot, ok := snap.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		subject, _ := snap.Subject(e.SubjectID)
		teacher, _ := snap.Teacher(e.TeacherID)
		label := subject.Code + " (" + teacher.Abbreviation + ")"
		if week := e.WeekType; week != models.WeekAll {
			label += " [" + string(week) + "]"
		}
		grid.Put(slot.Day, slot.Period, label)
	}
	return renderTimetable(grid, format)
}

// ExportTeacher renders a teacher timetable as CSV or PDF.
func (s *ScheduleService) ExportTeacher(ctx context.Context, teacherID int64, format string) ([]byte, string, error) {
	snap, entries, err := s.loadContext(ctx)
	if err != nil {
		return nil, "", err
	}
	teacher, ok := snap.Teacher(teacherID)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	grid := export.NewTimetable(teacher.DisplayName())
	for _, e := range entries {
		if e.TeacherID != teacherID {
			continue
		}
		slot, ok := snap.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		subject, _ := snap.Subject(e.SubjectID)
		class, _ := snap.Class(e.ClassID)
		grid.Put(slot.Day, slot.Period, subject.Code+" "+class.Name)
	}
	return renderTimetable(grid, format)
}

func renderTimetable(grid *export.Timetable, format string) ([]byte, string, error) {
	switch format {
	case "csv":
		data, err := export.NewCSVExporter().Render(grid)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "", "pdf":
		data, err := export.NewPDFExporter().Render(grid)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ScheduleService) loadContext(ctx context.Context) (*snapshot.Snapshot, []models.ScheduleEntry, error) {
	input, err := s.domain.LoadDomain(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load domain")
	}
	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return snapshot.Build(*input), existing, nil
}

// checkReferences rejects candidates pointing at unknown entities before
// the detector runs.
func (s *ScheduleService) checkReferences(snap *snapshot.Snapshot, candidate models.ScheduleEntry) error {
	if _, ok := snap.Class(candidate.ClassID); !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %d does not exist", candidate.ClassID))
	}
	if _, ok := snap.Teacher(candidate.TeacherID); !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teacher %d does not exist", candidate.TeacherID))
	}
	if _, ok := snap.Subject(candidate.SubjectID); !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %d does not exist", candidate.SubjectID))
	}
	if _, ok := snap.TimeSlot(candidate.TimeSlotID); !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time slot %d does not exist", candidate.TimeSlotID))
	}
	if !candidate.WeekType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "week_type must be ALL, A or B")
	}
	return nil
}

func conflictError(conflicts []models.Conflict) error {
	msg := "schedule conflict"
	if len(conflicts) > 0 {
		msg = conflicts[0].Message
	}
	return appErrors.Clone(appErrors.ErrConflict, msg)
}
