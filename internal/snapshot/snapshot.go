package snapshot

import (
	"sort"
	"time"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// Input carries the raw entity sets a snapshot is built from. The caller
// loads them under one read-consistent view; the snapshot copies what it
// keeps, so the slices may be reused afterwards.
type Input struct {
	Teachers       []models.Teacher
	Classes        []models.Class
	Subjects       []models.Subject
	TimeSlots      []models.TimeSlot
	Availabilities []models.TeacherAvailability
	Qualifications []models.TeacherSubject
	Requirements   []models.ClassRequirement
	Pinned         []models.ScheduleEntry
	ReferenceDate  time.Time
}

type availKey struct {
	teacherID int64
	weekday   int
	period    int
}

type pairKey struct {
	teacherID int64
	subjectID int64
}

type demandKey struct {
	classID   int64
	subjectID int64
}

// QualifiedTeacher is one row of the per-subject qualification index.
type QualifiedTeacher struct {
	TeacherID int64
	Level     models.QualificationLevel
	Grades    []int
}

// Snapshot is a frozen view of the domain for the duration of one solve.
// It is immutable after Build and safe for concurrent readers.
type Snapshot struct {
	teachers map[int64]models.Teacher
	classes  map[int64]models.Class
	subjects map[int64]models.Subject
	slots    map[int64]models.TimeSlot

	teachingSlots []models.TimeSlot
	qualBySubject map[int64][]QualifiedTeacher
	qualByPair    map[pairKey]models.TeacherSubject
	avail         map[availKey]models.AvailabilityKind
	demand        map[demandKey]int
	pinned        []models.ScheduleEntry

	referenceDate time.Time
}

// Build constructs the snapshot and its lookup indices. Availability and
// qualification rows outside their validity window at the reference date
// are treated as absent.
func Build(in Input) *Snapshot {
	ref := in.ReferenceDate
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	s := &Snapshot{
		teachers:      make(map[int64]models.Teacher, len(in.Teachers)),
		classes:       make(map[int64]models.Class, len(in.Classes)),
		subjects:      make(map[int64]models.Subject, len(in.Subjects)),
		slots:         make(map[int64]models.TimeSlot, len(in.TimeSlots)),
		qualBySubject: make(map[int64][]QualifiedTeacher),
		qualByPair:    make(map[pairKey]models.TeacherSubject),
		avail:         make(map[availKey]models.AvailabilityKind),
		demand:        make(map[demandKey]int, len(in.Requirements)),
		referenceDate: ref,
	}

	for _, t := range in.Teachers {
		s.teachers[t.ID] = t
	}
	for _, c := range in.Classes {
		s.classes[c.ID] = c
	}
	for _, sub := range in.Subjects {
		s.subjects[sub.ID] = sub
	}

	for _, slot := range in.TimeSlots {
		s.slots[slot.ID] = slot
		if !slot.IsBreak {
			s.teachingSlots = append(s.teachingSlots, slot)
		}
	}
	sort.Slice(s.teachingSlots, func(i, j int) bool {
		a, b := s.teachingSlots[i], s.teachingSlots[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Period < b.Period
	})

	// Resolve availability at the reference date. When several windows
	// cover the date the latest effective_from wins.
	effective := make(map[availKey]models.TeacherAvailability)
	for _, a := range in.Availabilities {
		if !a.ActiveOn(ref) {
			continue
		}
		key := availKey{a.TeacherID, a.Weekday, a.Period}
		if cur, ok := effective[key]; !ok || a.EffectiveFrom.After(cur.EffectiveFrom) {
			effective[key] = a
		}
	}
	for key, a := range effective {
		s.avail[key] = a.Kind
	}

	for _, q := range in.Qualifications {
		if !q.ValidOn(ref) {
			continue
		}
		s.qualByPair[pairKey{q.TeacherID, q.SubjectID}] = q
		grades := make([]int, 0, len(q.Grades))
		for _, g := range q.Grades {
			grades = append(grades, int(g))
		}
		s.qualBySubject[q.SubjectID] = append(s.qualBySubject[q.SubjectID], QualifiedTeacher{
			TeacherID: q.TeacherID,
			Level:     q.Level,
			Grades:    grades,
		})
	}
	for subjectID := range s.qualBySubject {
		rows := s.qualBySubject[subjectID]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Level.Rank() != rows[j].Level.Rank() {
				return rows[i].Level.Rank() < rows[j].Level.Rank()
			}
			return rows[i].TeacherID < rows[j].TeacherID
		})
	}

	for _, r := range in.Requirements {
		s.demand[demandKey{r.ClassID, r.SubjectID}] = r.HoursPerWeek
	}

	s.pinned = append(s.pinned, in.Pinned...)

	return s
}

// ReferenceDate returns the date availability and certification were
// resolved against.
func (s *Snapshot) ReferenceDate() time.Time { return s.referenceDate }

// Teacher looks up a teacher by id.
func (s *Snapshot) Teacher(id int64) (models.Teacher, bool) {
	t, ok := s.teachers[id]
	return t, ok
}

// Class looks up a class by id.
func (s *Snapshot) Class(id int64) (models.Class, bool) {
	c, ok := s.classes[id]
	return c, ok
}

// Subject looks up a subject by id.
func (s *Snapshot) Subject(id int64) (models.Subject, bool) {
	sub, ok := s.subjects[id]
	return sub, ok
}

// TimeSlot looks up a time slot by id.
func (s *Snapshot) TimeSlot(id int64) (models.TimeSlot, bool) {
	slot, ok := s.slots[id]
	return slot, ok
}

// Teachers returns all teachers ordered by id.
func (s *Snapshot) Teachers() []models.Teacher {
	out := make([]models.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Classes returns all classes ordered by id.
func (s *Snapshot) Classes() []models.Class {
	out := make([]models.Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subjects returns all subjects ordered by id.
func (s *Snapshot) Subjects() []models.Subject {
	out := make([]models.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TeachingSlots returns all non-break slots ordered by (day, period).
func (s *Snapshot) TeachingSlots() []models.TimeSlot {
	return s.teachingSlots
}

// Availability resolves the effective kind for a (teacher, weekday, period)
// cell. The second return is false when no row covers the cell.
func (s *Snapshot) Availability(teacherID int64, weekday, period int) (models.AvailabilityKind, bool) {
	kind, ok := s.avail[availKey{teacherID, weekday, period}]
	return kind, ok
}

// Blocked reports whether the teacher is blocked at the cell.
func (s *Snapshot) Blocked(teacherID int64, weekday, period int) bool {
	kind, ok := s.Availability(teacherID, weekday, period)
	return ok && kind == models.AvailabilityBlocked
}

// Qualification returns the valid qualification for a (teacher, subject)
// pair, if any.
func (s *Snapshot) Qualification(teacherID, subjectID int64) (models.TeacherSubject, bool) {
	q, ok := s.qualByPair[pairKey{teacherID, subjectID}]
	return q, ok
}

// QualifiedForSubject lists teachers qualified for a subject, ordered
// PRIMARY before SECONDARY before SUBSTITUTE.
func (s *Snapshot) QualifiedForSubject(subjectID int64) []QualifiedTeacher {
	return s.qualBySubject[subjectID]
}

// CanTeach reports whether the teacher holds a valid qualification for the
// subject covering the grade.
func (s *Snapshot) CanTeach(teacherID, subjectID int64, grade int) bool {
	q, ok := s.Qualification(teacherID, subjectID)
	return ok && q.CoversGrade(grade)
}

// Demand returns the required weekly hours for a class-subject pair,
// defaulting to zero.
func (s *Snapshot) Demand(classID, subjectID int64) int {
	return s.demand[demandKey{classID, subjectID}]
}

// HasDemand reports whether any requirement rows exist at all.
func (s *Snapshot) HasDemand() bool { return len(s.demand) > 0 }

// Pinned returns the fixed entries the solver must preserve.
func (s *Snapshot) Pinned() []models.ScheduleEntry { return s.pinned }
