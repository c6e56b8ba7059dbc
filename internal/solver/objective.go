package solver

import (
	"strings"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// Soft constraint weights. Fixed in this version; gap minimization and
// workload balance terms are intentionally absent.
const (
	WeightPreferredSlot   = 10
	WeightPrimaryLevel    = 5
	WeightSubstituteLevel = -3
	WeightCoreMorning     = 8
	WeightSportAfternoon  = 3

	lastMorningPeriod = 3
)

var coreSubjectCodes = map[string]struct{}{
	"DE": {},
	"MA": {},
	"SU": {},
}

var coreSubjectNames = map[string]struct{}{
	"deutsch":        {},
	"mathematik":     {},
	"sachunterricht": {},
}

var sportNameKeywords = []string{"sport", "turnen", "bewegung", "schwimmen"}

// ObjectiveCompiler emits the weighted soft terms into the backend's
// maximized objective.
type ObjectiveCompiler struct {
	snap    *snapshot.Snapshot
	vars    *Variables
	backend Backend
}

// NewObjectiveCompiler wires an objective compiler for one instance.
func NewObjectiveCompiler(snap *snapshot.Snapshot, vars *Variables, backend Backend) *ObjectiveCompiler {
	return &ObjectiveCompiler{snap: snap, vars: vars, backend: backend}
}

// Compile walks the variables in creation order and attaches their
// preference weights.
func (oc *ObjectiveCompiler) Compile() {
	for _, key := range oc.vars.Keys() {
		x, _ := oc.vars.Lookup(key)
		slot, _ := oc.snap.TimeSlot(key.TimeSlotID)

		if kind, ok := oc.snap.Availability(key.TeacherID, slot.Weekday(), slot.Period); ok && kind == models.AvailabilityPreferred {
			oc.backend.AddObjectiveTerm(x, WeightPreferredSlot)
		}

		if q, ok := oc.snap.Qualification(key.TeacherID, key.SubjectID); ok {
			switch q.Level {
			case models.QualificationPrimary:
				oc.backend.AddObjectiveTerm(x, WeightPrimaryLevel)
			case models.QualificationSubstitute:
				oc.backend.AddObjectiveTerm(x, WeightSubstituteLevel)
			}
		}

		subject, _ := oc.snap.Subject(key.SubjectID)
		if IsCoreSubject(subject) && slot.Period <= lastMorningPeriod {
			oc.backend.AddObjectiveTerm(x, WeightCoreMorning)
		}
		if IsSportSubject(subject) && slot.Period > lastMorningPeriod {
			oc.backend.AddObjectiveTerm(x, WeightSportAfternoon)
		}
	}
}

// IsCoreSubject reports whether the subject counts as a Grundschule core
// subject (Deutsch, Mathematik, Sachunterricht), matched by code or name.
func IsCoreSubject(s models.Subject) bool {
	if _, ok := coreSubjectCodes[strings.ToUpper(s.Code)]; ok {
		return true
	}
	_, ok := coreSubjectNames[strings.ToLower(s.Name)]
	return ok
}

// IsSportSubject reports whether the subject is a physical-education
// subject, matched by code or name keywords.
func IsSportSubject(s models.Subject) bool {
	if strings.EqualFold(s.Code, "SP") {
		return true
	}
	name := strings.ToLower(s.Name)
	for _, kw := range sportNameKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
