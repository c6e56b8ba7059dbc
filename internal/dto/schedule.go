package dto

import "github.com/grundschule/stundenplan-api/internal/models"

// ScheduleEntryRequest captures one candidate schedule entry.
type ScheduleEntryRequest struct {
	ClassID    int64   `json:"class_id" validate:"required,min=1"`
	TeacherID  int64   `json:"teacher_id" validate:"required,min=1"`
	SubjectID  int64   `json:"subject_id" validate:"required,min=1"`
	TimeSlotID int64   `json:"timeslot_id" validate:"required,min=1"`
	Room       *string `json:"room" validate:"omitempty,max=50"`
	WeekType   string  `json:"week_type" validate:"omitempty,oneof=ALL A B"`
}

// Entry converts the request into a model, defaulting the week type.
func (r ScheduleEntryRequest) Entry() models.ScheduleEntry {
	week := models.WeekType(r.WeekType)
	if week == "" {
		week = models.WeekAll
	}
	return models.ScheduleEntry{
		ClassID:    r.ClassID,
		TeacherID:  r.TeacherID,
		SubjectID:  r.SubjectID,
		TimeSlotID: r.TimeSlotID,
		Room:       r.Room,
		WeekType:   week,
	}
}

// BulkScheduleRequest creates several entries atomically: every candidate
// must validate or nothing is written.
type BulkScheduleRequest struct {
	Entries []ScheduleEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// ValidationResponse reports admissibility of one candidate.
type ValidationResponse struct {
	Valid     bool              `json:"valid"`
	Conflicts []models.Conflict `json:"conflicts"`
}
