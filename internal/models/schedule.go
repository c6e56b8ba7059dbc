package models

import "time"

// WeekType distinguishes bi-weekly alternation. A and B do not collide with
// each other; ALL collides with everything.
type WeekType string

const (
	WeekAll WeekType = "ALL"
	WeekA   WeekType = "A"
	WeekB   WeekType = "B"
)

// Valid reports whether the week type is one of the closed set.
func (w WeekType) Valid() bool {
	switch w {
	case WeekAll, WeekA, WeekB:
		return true
	}
	return false
}

// Overlaps reports whether two week types occupy a shared week.
func (w WeekType) Overlaps(other WeekType) bool {
	if w == WeekAll || other == WeekAll {
		return true
	}
	return w == other
}

// ScheduleEntry is one lesson: a class taught by a teacher in a subject at
// a time slot, optionally bound to a room.
type ScheduleEntry struct {
	ID         int64     `db:"id" json:"id"`
	ClassID    int64     `db:"class_id" json:"class_id"`
	TeacherID  int64     `db:"teacher_id" json:"teacher_id"`
	SubjectID  int64     `db:"subject_id" json:"subject_id"`
	TimeSlotID int64     `db:"timeslot_id" json:"timeslot_id"`
	Room       *string   `db:"room" json:"room,omitempty"`
	WeekType   WeekType  `db:"week_type" json:"week_type"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// RoomName returns the room or "" when unassigned.
func (e ScheduleEntry) RoomName() string {
	if e.Room == nil {
		return ""
	}
	return *e.Room
}

// ScheduleFilter describes query params for listing schedule entries.
type ScheduleFilter struct {
	ClassID       int64
	TeacherID     int64
	SubjectID     int64
	TimeSlotID    int64
	Room          string
	WeekType      WeekType
	Day           int
	IncludeBreaks bool
	Page          int
	PageSize      int
}
