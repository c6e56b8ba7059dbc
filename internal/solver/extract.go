package solver

import (
	"sort"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// Extract maps the solved model back to schedule entries. Pinned tuples
// keep their stored id, week type and room; fresh tuples become new ALL
// entries without a room. Output order is (day, period, class, teacher).
func Extract(snap *snapshot.Snapshot, vars *Variables, backend Backend) []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(vars.Keys()))
	for _, key := range vars.Keys() {
		x, _ := vars.Lookup(key)
		if !backend.Value(x) {
			continue
		}
		if pin, ok := vars.Pin(key); ok {
			entries = append(entries, pin)
			continue
		}
		entries = append(entries, models.ScheduleEntry{
			ClassID:    key.ClassID,
			TeacherID:  key.TeacherID,
			SubjectID:  key.SubjectID,
			TimeSlotID: key.TimeSlotID,
			WeekType:   models.WeekAll,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		slotA, _ := snap.TimeSlot(a.TimeSlotID)
		slotB, _ := snap.TimeSlot(b.TimeSlotID)
		if slotA.Day != slotB.Day {
			return slotA.Day < slotB.Day
		}
		if slotA.Period != slotB.Period {
			return slotA.Period < slotB.Period
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		return a.TeacherID < b.TeacherID
	})

	return entries
}
