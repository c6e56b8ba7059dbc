package models

import (
	"time"

	"github.com/lib/pq"
)

// QualificationLevel orders how well a teacher can cover a subject.
type QualificationLevel string

const (
	QualificationPrimary    QualificationLevel = "PRIMARY"    // Hauptfach
	QualificationSecondary  QualificationLevel = "SECONDARY"  // Nebenfach
	QualificationSubstitute QualificationLevel = "SUBSTITUTE" // Vertretung
)

// Valid reports whether the level is one of the closed set.
func (l QualificationLevel) Valid() bool {
	switch l {
	case QualificationPrimary, QualificationSecondary, QualificationSubstitute:
		return true
	}
	return false
}

// Rank orders levels PRIMARY < SECONDARY < SUBSTITUTE for sorting.
func (l QualificationLevel) Rank() int {
	switch l {
	case QualificationPrimary:
		return 0
	case QualificationSecondary:
		return 1
	default:
		return 2
	}
}

// TeacherSubject binds a teacher to a subject with a qualification level,
// an optional grade restriction, an optional weekly hour cap for the pair,
// and an optional certification window.
type TeacherSubject struct {
	ID              int64              `db:"id" json:"id"`
	TeacherID       int64              `db:"teacher_id" json:"teacher_id"`
	SubjectID       int64              `db:"subject_id" json:"subject_id"`
	Level           QualificationLevel `db:"level" json:"level"`
	Grades          pq.Int64Array      `db:"grades" json:"grades,omitempty"`
	MaxHoursPerWeek *int               `db:"max_hours_per_week" json:"max_hours_per_week,omitempty"`
	CertifiedFrom   *time.Time         `db:"certified_from" json:"certified_from,omitempty"`
	CertifiedUntil  *time.Time         `db:"certified_until" json:"certified_until,omitempty"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// CoversGrade reports whether the qualification extends to the given grade.
// A nil grade list means no restriction.
func (q TeacherSubject) CoversGrade(grade int) bool {
	if len(q.Grades) == 0 {
		return true
	}
	for _, g := range q.Grades {
		if int(g) == grade {
			return true
		}
	}
	return false
}

// ValidOn reports whether the certification window covers the given date.
// An expiry falling exactly on the date counts as expired.
func (q TeacherSubject) ValidOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	if q.CertifiedFrom != nil && day.Before(q.CertifiedFrom.Truncate(24*time.Hour)) {
		return false
	}
	if q.CertifiedUntil != nil && !day.Before(q.CertifiedUntil.Truncate(24*time.Hour)) {
		return false
	}
	return true
}
