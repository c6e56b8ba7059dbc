package models

import "time"

// Class represents a Grundschule class (e.g. "1a").
type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     int       `db:"grade" json:"grade"`
	Size      int       `db:"size" json:"size"`
	HomeRoom  *string   `db:"home_room" json:"home_room,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Grade     int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ClassRequirement pins the weekly lesson demand for a class-subject pair.
// The solver emits an equality constraint for every row present; pairs
// without a row default to zero required hours.
type ClassRequirement struct {
	ID           int64     `db:"id" json:"id"`
	ClassID      int64     `db:"class_id" json:"class_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
