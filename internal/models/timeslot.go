package models

import "time"

// TimeSlot is one cell of the weekly grid: a (day, period) pair with
// wall-clock bounds. Day runs 1 (Monday) to 5 (Friday), period 1 to 8.
type TimeSlot struct {
	ID        int64     `db:"id" json:"id"`
	Day       int       `db:"day" json:"day"`
	Period    int       `db:"period" json:"period"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsBreak   bool      `db:"is_break" json:"is_break"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Weekday translates the 1-indexed day into the 0-indexed weekday used by
// the availability table.
func (ts TimeSlot) Weekday() int {
	return ts.Day - 1
}

// TimeSlotFilter captures filters for listing time slots.
type TimeSlotFilter struct {
	Day           int
	IncludeBreaks bool
}
