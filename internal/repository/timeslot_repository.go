package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// TimeSlotRepository provides persistence for the weekly grid.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const timeslotColumns = "id, day, period, start_time, end_time, is_break, created_at, updated_at"

// List returns time slots ordered by (day, period).
func (r *TimeSlotRepository) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, error) {
	base := "FROM timeslots WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Day > 0 {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if !filter.IncludeBreaks {
		conditions = append(conditions, "NOT is_break")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY day, period", timeslotColumns, base)
	var slots []models.TimeSlot
	err := r.db.SelectContext(ctx, &slots, query, args...)
	return slots, err
}

// ListAll returns every slot ordered by (day, period).
func (r *TimeSlotRepository) ListAll(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	err := r.db.SelectContext(ctx, &slots, "SELECT "+timeslotColumns+" FROM timeslots ORDER BY day, period")
	return slots, err
}

// FindByID returns one time slot.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, "SELECT "+timeslotColumns+" FROM timeslots WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ExistsAt checks (day, period) uniqueness, optionally excluding a row.
func (r *TimeSlotRepository) ExistsAt(ctx context.Context, day, period int, excludeID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM timeslots WHERE day = $1 AND period = $2 AND id <> $3", day, period, excludeID)
	return count > 0, err
}

// Create inserts a time slot and backfills the generated id.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	query := `INSERT INTO timeslots (day, period, start_time, end_time, is_break, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, slot.Day, slot.Period, slot.StartTime, slot.EndTime, slot.IsBreak).
		Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
}

// Update persists mutable slot fields.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	query := `UPDATE timeslots SET day = $1, period = $2, start_time = $3, end_time = $4, is_break = $5, updated_at = NOW() WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, slot.Day, slot.Period, slot.StartTime, slot.EndTime, slot.IsBreak, slot.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a time slot row.
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM timeslots WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CountReferences counts schedule entries still pointing at the slot.
func (r *TimeSlotRepository) CountReferences(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM schedule_entries WHERE timeslot_id = $1", id)
	return count, err
}
