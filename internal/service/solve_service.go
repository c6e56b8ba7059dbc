package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/grundschule/stundenplan-api/internal/conflict"
	"github.com/grundschule/stundenplan-api/internal/dto"
	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/quality"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
	"github.com/grundschule/stundenplan-api/internal/solver"
	"github.com/grundschule/stundenplan-api/pkg/config"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
)

type solveScheduleRepository interface {
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
	BulkCreateTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) ([]models.ScheduleEntry, error)
}

// scheduleSolver abstracts the driver so tests can stub the whole engine.
type scheduleSolver interface {
	Solve(ctx context.Context, snap *snapshot.Snapshot, opts solver.Options) *solver.Result
}

// SolveService runs the full generation pipeline: snapshot, solve,
// re-validation, scoring and the transactional write.
type SolveService struct {
	domain    domainReader
	schedules solveScheduleRepository
	engine    scheduleSolver
	cfg       config.SolverConfig
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSolveService wires the solve service. A nil engine defaults to the
// gophersat-backed driver configured from cfg.
func NewSolveService(
	domain domainReader,
	schedules solveScheduleRepository,
	engine scheduleSolver,
	cfg config.SolverConfig,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SolveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTimeLimit <= 0 {
		cfg.DefaultTimeLimit = time.Minute
	}
	if cfg.MaxTimeLimit <= 0 {
		cfg.MaxTimeLimit = time.Hour
	}
	if engine == nil {
		limits := solver.Limits{
			MaxDailyHoursFullTime:  cfg.MaxDailyHoursFullTime,
			MaxDailyHoursPartTime:  cfg.MaxDailyHoursPartTime,
			MaxWorkingDaysPartTime: cfg.MaxWorkingDaysPartTime,
		}
		engine = solver.NewDriver(nil, limits, logger)
	}
	return &SolveService{
		domain:    domain,
		schedules: schedules,
		engine:    engine,
		cfg:       cfg,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Generate builds a schedule from scratch or on top of the existing one,
// then persists it atomically. No partial schedule is ever written.
func (s *SolveService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*models.SolveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	if req.ClearExisting && req.PreserveExisting {
		return nil, appErrors.Clone(appErrors.ErrValidation, "clear_existing and preserve_existing are mutually exclusive")
	}

	timeLimit := s.cfg.DefaultTimeLimit
	if req.TimeLimitSeconds > 0 {
		timeLimit = time.Duration(req.TimeLimitSeconds) * time.Second
	}
	if timeLimit > s.cfg.MaxTimeLimit {
		timeLimit = s.cfg.MaxTimeLimit
	}
	var seed int64
	if req.RandomSeed != nil {
		seed = *req.RandomSeed
	}

	input, err := s.domain.LoadDomain(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load domain")
	}
	existing, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	input.ReferenceDate = req.ParseReferenceDate()
	if req.PreserveExisting && !req.ClearExisting {
		input.Pinned = existing
	}
	snap := snapshot.Build(*input)

	start := time.Now()
	result := s.engine.Solve(ctx, snap, solver.Options{TimeLimit: timeLimit, Seed: seed})
	s.metrics.ObserveSolve(result.Outcome.String(), result.Duration)

	if !result.Feasible {
		return nil, s.infeasibleError(result)
	}

	// The solver's output must pass the same detector manual edits do; a
	// discrepancy is a bug, not user error.
	violations := conflict.New(snap).Scan(result.Entries)
	if len(violations) > 0 {
		s.logger.Error("solver_output_invalid",
			zap.Int("violations", len(violations)),
			zap.Int64("seed", seed))
		return nil, appErrors.Clone(appErrors.ErrInternal, "solver produced a conflicting schedule")
	}

	breakdown := quality.NewScorer(snap).Score(result.Entries, 0)

	persisted, err := s.persist(ctx, req.ClearExisting, result.Entries)
	if err != nil {
		return nil, err
	}

	solveResult := &models.SolveResult{
		RunID:                uuid.NewString(),
		Entries:              persisted,
		QualityScore:         breakdown.Total,
		QualityBreakdown:     breakdown,
		GenerationTime:       time.Since(start),
		SatisfiedConstraints: result.SatisfiedConstraints,
		ViolatedConstraints:  result.ViolatedConstraints,
		ObjectiveValue:       result.ObjectiveValue,
		Feasible:             true,
	}

	s.metrics.SetQualityScore(breakdown.Total)
	s.cache.InvalidateSchedule(ctx)
	s.cache.SetJSON(ctx, cacheKeyLastSolve, solveResult)

	s.logger.Info("solve_completed",
		zap.String("run_id", solveResult.RunID),
		zap.Int("entries", len(persisted)),
		zap.Float64("quality", breakdown.Total),
		zap.Int64("objective", result.ObjectiveValue),
		zap.Duration("took", solveResult.GenerationTime))

	return solveResult, nil
}

// Optimize improves the current schedule while holding every existing
// entry fixed.
func (s *SolveService) Optimize(ctx context.Context, req dto.GenerateScheduleRequest) (*models.SolveResult, error) {
	req.PreserveExisting = true
	req.ClearExisting = false
	return s.Generate(ctx, req)
}

// LastResult returns the cached summary of the most recent solve, if any.
func (s *SolveService) LastResult(ctx context.Context) (*models.SolveResult, bool) {
	var result models.SolveResult
	if s.cache.GetJSON(ctx, cacheKeyLastSolve, &result) {
		return &result, true
	}
	return nil, false
}

// persist writes the final schedule in one serializable transaction so the
// clear and the inserts cannot interleave with concurrent manual edits.
// Entries that already exist (pins) are skipped.
func (s *SolveService) persist(ctx context.Context, clearExisting bool, entries []models.ScheduleEntry) ([]models.ScheduleEntry, error) {
	tx, err := s.schedules.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin solve transaction")
	}

	if clearExisting {
		if err := s.schedules.DeleteAllTx(ctx, tx); err != nil {
			_ = tx.Rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to clear schedule")
		}
	}

	fresh := make([]models.ScheduleEntry, 0, len(entries))
	kept := make([]models.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == 0 {
			fresh = append(fresh, e)
		} else {
			kept = append(kept, e)
		}
	}

	created, err := s.schedules.BulkCreateTx(ctx, tx, fresh)
	if err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to write schedule")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit schedule")
	}

	return append(kept, created...), nil
}

func (s *SolveService) infeasibleError(result *solver.Result) error {
	switch result.Outcome {
	case solver.OutcomeCancelled:
		return appErrors.Clone(appErrors.ErrCancelled, "")
	case solver.OutcomeTimeout:
		return appErrors.Clone(appErrors.ErrTimeout, "")
	default:
		msg := result.Reason
		if len(result.ViolatedConstraints) > 0 {
			msg = fmt.Sprintf("%s (constraint categories: %v)", result.Reason, result.ViolatedConstraints)
		}
		return appErrors.Clone(appErrors.ErrInfeasible, msg)
	}
}
