package solver

import (
	"fmt"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// VarKey addresses one decision variable: teacher t teaches class c
// subject s at time slot τ.
type VarKey struct {
	TeacherID  int64
	ClassID    int64
	SubjectID  int64
	TimeSlotID int64
}

type teacherSlotKey struct {
	teacherID int64
	slotID    int64
}

type classSlotKey struct {
	classID int64
	slotID  int64
}

type teacherDayKey struct {
	teacherID int64
	day       int
}

type teacherSubjectKey struct {
	teacherID int64
	subjectID int64
}

type classSubjectKey struct {
	classID   int64
	subjectID int64
}

// Variables holds the sparse variable map plus the indices the constraint
// and objective compilers iterate. Creation order is deterministic:
// teachers, classes, subjects ascending by id, slots by (day, period).
type Variables struct {
	snap *snapshot.Snapshot

	byKey map[VarKey]Var
	keys  []VarKey

	byTeacherSlot   map[teacherSlotKey][]Var
	byClassSlot     map[classSlotKey][]Var
	byTeacher       map[int64][]Var
	byTeacherDay    map[teacherDayKey][]Var
	byTeacherSubj   map[teacherSubjectKey][]Var
	byClassSubj     map[classSubjectKey][]Var
	pinsByKey       map[VarKey]models.ScheduleEntry
	unmatchedPins   []models.ScheduleEntry
	weekPins        []models.ScheduleEntry
	teachingPeriods map[int][]models.TimeSlot // day -> non-break slots in period order
}

// BuildVariables pre-filters impossible tuples and creates one backend
// Boolean per admissible (t, c, s, τ). ALL-week pins are recorded so the
// constraint compiler can fix them; pins whose tuple survives no filter
// end up in UnmatchedPins. A- and B-week pins are kept aside: fresh
// entries are ALL-week and collide with either, so the compiler excludes
// their cells instead of re-optimizing them.
func BuildVariables(snap *snapshot.Snapshot, backend Backend, pins []models.ScheduleEntry) *Variables {
	v := &Variables{
		snap:            snap,
		byKey:           make(map[VarKey]Var),
		byTeacherSlot:   make(map[teacherSlotKey][]Var),
		byClassSlot:     make(map[classSlotKey][]Var),
		byTeacher:       make(map[int64][]Var),
		byTeacherDay:    make(map[teacherDayKey][]Var),
		byTeacherSubj:   make(map[teacherSubjectKey][]Var),
		byClassSubj:     make(map[classSubjectKey][]Var),
		pinsByKey:       make(map[VarKey]models.ScheduleEntry),
		teachingPeriods: make(map[int][]models.TimeSlot),
	}

	slots := snap.TeachingSlots()
	for _, slot := range slots {
		v.teachingPeriods[slot.Day] = append(v.teachingPeriods[slot.Day], slot)
	}

	for _, t := range snap.Teachers() {
		for _, c := range snap.Classes() {
			for _, s := range snap.Subjects() {
				if !snap.CanTeach(t.ID, s.ID, c.Grade) {
					continue
				}
				for _, slot := range slots {
					if snap.Blocked(t.ID, slot.Weekday(), slot.Period) {
						continue
					}
					key := VarKey{TeacherID: t.ID, ClassID: c.ID, SubjectID: s.ID, TimeSlotID: slot.ID}
					bv := backend.NewBool(fmt.Sprintf("x_t%d_c%d_s%d_ts%d", t.ID, c.ID, s.ID, slot.ID))
					v.byKey[key] = bv
					v.keys = append(v.keys, key)

					v.byTeacherSlot[teacherSlotKey{t.ID, slot.ID}] = append(v.byTeacherSlot[teacherSlotKey{t.ID, slot.ID}], bv)
					v.byClassSlot[classSlotKey{c.ID, slot.ID}] = append(v.byClassSlot[classSlotKey{c.ID, slot.ID}], bv)
					v.byTeacher[t.ID] = append(v.byTeacher[t.ID], bv)
					v.byTeacherDay[teacherDayKey{t.ID, slot.Day}] = append(v.byTeacherDay[teacherDayKey{t.ID, slot.Day}], bv)
					v.byTeacherSubj[teacherSubjectKey{t.ID, s.ID}] = append(v.byTeacherSubj[teacherSubjectKey{t.ID, s.ID}], bv)
					v.byClassSubj[classSubjectKey{c.ID, s.ID}] = append(v.byClassSubj[classSubjectKey{c.ID, s.ID}], bv)
				}
			}
		}
	}

	for _, pin := range pins {
		if pin.WeekType == models.WeekA || pin.WeekType == models.WeekB {
			v.weekPins = append(v.weekPins, pin)
			continue
		}
		key := VarKey{TeacherID: pin.TeacherID, ClassID: pin.ClassID, SubjectID: pin.SubjectID, TimeSlotID: pin.TimeSlotID}
		if _, ok := v.byKey[key]; !ok {
			v.unmatchedPins = append(v.unmatchedPins, pin)
			continue
		}
		v.pinsByKey[key] = pin
	}

	return v
}

// Count returns how many variables were created.
func (v *Variables) Count() int { return len(v.keys) }

// Keys returns the variable keys in creation order.
func (v *Variables) Keys() []VarKey { return v.keys }

// Lookup resolves a tuple to its variable.
func (v *Variables) Lookup(key VarKey) (Var, bool) {
	bv, ok := v.byKey[key]
	return bv, ok
}

// Pin returns the pinned entry seeding a tuple, if any.
func (v *Variables) Pin(key VarKey) (models.ScheduleEntry, bool) {
	pin, ok := v.pinsByKey[key]
	return pin, ok
}

// Pins returns all matched pins keyed by tuple.
func (v *Variables) Pins() map[VarKey]models.ScheduleEntry { return v.pinsByKey }

// UnmatchedPins lists pinned entries whose tuple was filtered out (break
// slot, missing qualification, or blocked availability).
func (v *Variables) UnmatchedPins() []models.ScheduleEntry { return v.unmatchedPins }

// WeekPins lists the A- and B-week pins whose cells the compiler blocks
// for fresh ALL-week assignments.
func (v *Variables) WeekPins() []models.ScheduleEntry { return v.weekPins }

// TeachingPeriods returns the day's non-break slots in period order.
func (v *Variables) TeachingPeriods(day int) []models.TimeSlot { return v.teachingPeriods[day] }

// Days lists the days that carry teaching slots, ascending.
func (v *Variables) Days() []int {
	days := make([]int, 0, len(v.teachingPeriods))
	for d := 1; d <= 7; d++ {
		if len(v.teachingPeriods[d]) > 0 {
			days = append(days, d)
		}
	}
	return days
}
