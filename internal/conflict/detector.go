package conflict

import (
	"fmt"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// Detector checks candidate entries and whole schedules against the hard
// invariants. It never returns errors; conflicts are values, and an empty
// list means admissible.
type Detector struct {
	snap *snapshot.Snapshot
}

// New builds a detector over a frozen domain snapshot.
func New(snap *snapshot.Snapshot) *Detector {
	return &Detector{snap: snap}
}

// ValidateCandidate checks a single entry (persisted or not) against the
// given existing entries. Check order is fixed: break, qualification,
// availability, teacher, class, room. An existing entry with the same id
// as the candidate is skipped, so re-validating a stored entry works.
func (d *Detector) ValidateCandidate(candidate models.ScheduleEntry, existing []models.ScheduleEntry) []models.Conflict {
	var conflicts []models.Conflict

	slot, slotOK := d.snap.TimeSlot(candidate.TimeSlotID)
	if slotOK && slot.IsBreak {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictBreak,
			Message: "cannot schedule lessons during break periods",
		})
	}

	if class, ok := d.snap.Class(candidate.ClassID); ok {
		if !d.snap.CanTeach(candidate.TeacherID, candidate.SubjectID, class.Grade) {
			conflicts = append(conflicts, models.Conflict{
				Kind: models.ConflictQualification,
				Message: fmt.Sprintf("teacher %d holds no valid qualification for subject %d at grade %d",
					candidate.TeacherID, candidate.SubjectID, class.Grade),
			})
		}
	}

	if slotOK && d.snap.Blocked(candidate.TeacherID, slot.Weekday(), slot.Period) {
		conflicts = append(conflicts, models.Conflict{
			Kind:    models.ConflictAvailability,
			Message: fmt.Sprintf("teacher %d is blocked on weekday %d period %d", candidate.TeacherID, slot.Weekday(), slot.Period),
		})
	}

	for i := range existing {
		e := existing[i]
		if e.ID != 0 && e.ID == candidate.ID {
			continue
		}
		if e.TimeSlotID != candidate.TimeSlotID || !e.WeekType.Overlaps(candidate.WeekType) {
			continue
		}
		if e.TeacherID == candidate.TeacherID {
			conflicts = append(conflicts, models.Conflict{
				Kind:            models.ConflictTeacher,
				Message:         fmt.Sprintf("teacher %d is already scheduled at this time", candidate.TeacherID),
				ExistingEntryID: entryID(e),
			})
			break
		}
	}

	for i := range existing {
		e := existing[i]
		if e.ID != 0 && e.ID == candidate.ID {
			continue
		}
		if e.TimeSlotID != candidate.TimeSlotID || !e.WeekType.Overlaps(candidate.WeekType) {
			continue
		}
		if e.ClassID == candidate.ClassID {
			conflicts = append(conflicts, models.Conflict{
				Kind:            models.ConflictClass,
				Message:         fmt.Sprintf("class %d already has a lesson at this time", candidate.ClassID),
				ExistingEntryID: entryID(e),
			})
			break
		}
	}

	if room := candidate.RoomName(); room != "" {
		for i := range existing {
			e := existing[i]
			if e.ID != 0 && e.ID == candidate.ID {
				continue
			}
			if e.TimeSlotID != candidate.TimeSlotID || !e.WeekType.Overlaps(candidate.WeekType) {
				continue
			}
			if e.RoomName() == room {
				conflicts = append(conflicts, models.Conflict{
					Kind:            models.ConflictRoom,
					Message:         fmt.Sprintf("room %q is already booked at this time", room),
					ExistingEntryID: entryID(e),
				})
				break
			}
		}
	}

	return conflicts
}

// Scan re-validates every entry against the rest of the schedule and
// returns the entries that participate in at least one conflict.
func (d *Detector) Scan(entries []models.ScheduleEntry) []models.EntryConflicts {
	var out []models.EntryConflicts
	for i := range entries {
		// Exclude by position, not id: freshly extracted entries all carry
		// a zero id and must not collide with themselves.
		others := make([]models.ScheduleEntry, 0, len(entries)-1)
		others = append(others, entries[:i]...)
		others = append(others, entries[i+1:]...)
		conflicts := d.ValidateCandidate(entries[i], others)
		if len(conflicts) > 0 {
			out = append(out, models.EntryConflicts{Entry: entries[i], Conflicts: conflicts})
		}
	}
	return out
}

func entryID(e models.ScheduleEntry) *int64 {
	if e.ID == 0 {
		return nil
	}
	id := e.ID
	return &id
}
