package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID              int64     `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Abbreviation    string    `db:"abbreviation" json:"abbreviation"`
	MaxHoursPerWeek int       `db:"max_hours_per_week" json:"max_hours_per_week"`
	IsPartTime      bool      `db:"is_part_time" json:"is_part_time"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders "Last, First" for exports and logs.
func (t Teacher) DisplayName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	return t.LastName + ", " + t.FirstName
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	PartTime  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
