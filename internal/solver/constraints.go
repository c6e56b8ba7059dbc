package solver

import (
	"fmt"

	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

// Constraint category names reported in solve results.
const (
	ConstraintTeacherUniqueness  = "teacher_uniqueness"
	ConstraintClassUniqueness    = "class_uniqueness"
	ConstraintAvailability       = "availability"
	ConstraintQualification      = "qualification"
	ConstraintBreakExclusion     = "break_exclusion"
	ConstraintWeeklyHours        = "weekly_hours"
	ConstraintSubjectHours       = "subject_hours"
	ConstraintDailyHours         = "daily_hours"
	ConstraintPartTimeDays       = "part_time_days"
	ConstraintConsecutiveSubject = "consecutive_subject_limit"
	ConstraintFixedAssignments   = "fixed_assignments"
	ConstraintDemandCoverage     = "demand_coverage"
)

// Limits carries the regulation bounds the compiler enforces.
type Limits struct {
	MaxDailyHoursFullTime  int
	MaxDailyHoursPartTime  int
	MaxWorkingDaysPartTime int
}

// DefaultLimits mirrors the German full-time/part-time teaching bounds.
func DefaultLimits() Limits {
	return Limits{MaxDailyHoursFullTime: 6, MaxDailyHoursPartTime: 3, MaxWorkingDaysPartTime: 3}
}

// ConstraintCompiler emits the hard constraint set into the backend.
type ConstraintCompiler struct {
	snap    *snapshot.Snapshot
	vars    *Variables
	backend Backend
	limits  Limits
}

// NewConstraintCompiler wires a compiler for one instance.
func NewConstraintCompiler(snap *snapshot.Snapshot, vars *Variables, backend Backend, limits Limits) *ConstraintCompiler {
	if limits.MaxDailyHoursFullTime <= 0 {
		limits.MaxDailyHoursFullTime = 6
	}
	if limits.MaxDailyHoursPartTime <= 0 {
		limits.MaxDailyHoursPartTime = 3
	}
	if limits.MaxWorkingDaysPartTime <= 0 {
		limits.MaxWorkingDaysPartTime = 3
	}
	return &ConstraintCompiler{snap: snap, vars: vars, backend: backend, limits: limits}
}

// Compile emits every hard constraint and returns the emitted category
// names in emission order. A non-nil error means the instance is already
// known infeasible before the backend runs (pin or demand cannot be met).
func (cc *ConstraintCompiler) Compile() ([]string, error) {
	if pins := cc.vars.UnmatchedPins(); len(pins) > 0 {
		p := pins[0]
		return nil, fmt.Errorf("fixed entry (class %d, teacher %d, subject %d, slot %d) violates pre-filters",
			p.ClassID, p.TeacherID, p.SubjectID, p.TimeSlotID)
	}

	var emitted []string
	add := func(name string) { emitted = append(emitted, name) }

	cc.compileUniqueness()
	add(ConstraintTeacherUniqueness)
	add(ConstraintClassUniqueness)

	// Availability, qualification and break exclusion are enforced by
	// variable pre-filtering: no variable exists for a blocked cell, a
	// missing qualification, or a break slot. The categories still count
	// as emitted so results report them.
	add(ConstraintAvailability)
	add(ConstraintQualification)
	add(ConstraintBreakExclusion)

	cc.compileWeeklyCaps()
	add(ConstraintWeeklyHours)

	cc.compileSubjectCaps()
	add(ConstraintSubjectHours)

	cc.compileDailyCaps()
	add(ConstraintDailyHours)

	cc.compilePartTimeDays()
	add(ConstraintPartTimeDays)

	cc.compileConsecutiveSubject()
	add(ConstraintConsecutiveSubject)

	cc.compilePins()
	cc.compileWeekPinExclusions()
	add(ConstraintFixedAssignments)

	if err := cc.compileDemand(); err != nil {
		return nil, err
	}
	add(ConstraintDemandCoverage)

	return emitted, nil
}

// compileUniqueness: at most one lesson per (teacher, slot) and per
// (class, slot).
func (cc *ConstraintCompiler) compileUniqueness() {
	for _, t := range cc.snap.Teachers() {
		for _, slot := range cc.snap.TeachingSlots() {
			cc.atMost(cc.vars.byTeacherSlot[teacherSlotKey{t.ID, slot.ID}], 1)
		}
	}
	for _, c := range cc.snap.Classes() {
		for _, slot := range cc.snap.TeachingSlots() {
			cc.atMost(cc.vars.byClassSlot[classSlotKey{c.ID, slot.ID}], 1)
		}
	}
}

func (cc *ConstraintCompiler) compileWeeklyCaps() {
	for _, t := range cc.snap.Teachers() {
		cc.atMost(cc.vars.byTeacher[t.ID], t.MaxHoursPerWeek)
	}
}

func (cc *ConstraintCompiler) compileSubjectCaps() {
	for _, t := range cc.snap.Teachers() {
		for _, s := range cc.snap.Subjects() {
			q, ok := cc.snap.Qualification(t.ID, s.ID)
			if !ok || q.MaxHoursPerWeek == nil {
				continue
			}
			cc.atMost(cc.vars.byTeacherSubj[teacherSubjectKey{t.ID, s.ID}], *q.MaxHoursPerWeek)
		}
	}
}

func (cc *ConstraintCompiler) compileDailyCaps() {
	for _, t := range cc.snap.Teachers() {
		limit := cc.limits.MaxDailyHoursFullTime
		if t.IsPartTime {
			limit = cc.limits.MaxDailyHoursPartTime
		}
		for _, day := range cc.vars.Days() {
			cc.atMost(cc.vars.byTeacherDay[teacherDayKey{t.ID, day}], limit)
		}
	}
}

// compilePartTimeDays introduces day indicators y[t,day] and bounds the
// number of active days for part-time teachers.
func (cc *ConstraintCompiler) compilePartTimeDays() {
	for _, t := range cc.snap.Teachers() {
		if !t.IsPartTime {
			continue
		}
		var dayVars []Var
		for _, day := range cc.vars.Days() {
			dayLoad := cc.vars.byTeacherDay[teacherDayKey{t.ID, day}]
			if len(dayLoad) == 0 {
				continue
			}
			y := cc.backend.NewBool(fmt.Sprintf("y_t%d_d%d", t.ID, day))
			dayVars = append(dayVars, y)

			// x <= y for every lesson of the day, and y <= sum(x).
			for _, x := range dayLoad {
				cc.backend.AddLinear([]Term{{Var: x, Coeff: 1}, {Var: y, Coeff: -1}}, SenseLe, 0)
			}
			terms := make([]Term, 0, len(dayLoad)+1)
			terms = append(terms, Term{Var: y, Coeff: 1})
			for _, x := range dayLoad {
				terms = append(terms, Term{Var: x, Coeff: -1})
			}
			cc.backend.AddLinear(terms, SenseLe, 0)
		}
		cc.atMost(dayVars, cc.limits.MaxWorkingDaysPartTime)
	}
}

// compileConsecutiveSubject forbids three consecutive non-break periods of
// the same subject for a class: over every sliding window of three
// adjacent teaching slots within a day, at most two lessons of one
// subject.
func (cc *ConstraintCompiler) compileConsecutiveSubject() {
	for _, c := range cc.snap.Classes() {
		for _, s := range cc.snap.Subjects() {
			for _, day := range cc.vars.Days() {
				daySlots := cc.vars.TeachingPeriods(day)
				for i := 0; i+2 < len(daySlots); i++ {
					var window []Var
					for j := 0; j < 3; j++ {
						slot := daySlots[i+j]
						for _, t := range cc.snap.Teachers() {
							if x, ok := cc.vars.Lookup(VarKey{t.ID, c.ID, s.ID, slot.ID}); ok {
								window = append(window, x)
							}
						}
					}
					cc.atMost(window, 2)
				}
			}
		}
	}
}

func (cc *ConstraintCompiler) compilePins() {
	for _, key := range cc.vars.Keys() {
		if _, pinned := cc.vars.Pin(key); !pinned {
			continue
		}
		x, _ := cc.vars.Lookup(key)
		cc.backend.AddLinear([]Term{{Var: x, Coeff: 1}}, SenseGe, 1)
	}
}

// compileWeekPinExclusions blocks fresh assignments at the cells A- and
// B-week pins occupy. New entries are ALL-week and would collide with the
// pinned lesson on its week, so the pin's teacher and class stay free at
// that slot.
func (cc *ConstraintCompiler) compileWeekPinExclusions() {
	for _, pin := range cc.vars.WeekPins() {
		for _, x := range cc.vars.byTeacherSlot[teacherSlotKey{pin.TeacherID, pin.TimeSlotID}] {
			cc.backend.AddLinear([]Term{{Var: x, Coeff: 1}}, SenseLe, 0)
		}
		for _, x := range cc.vars.byClassSlot[classSlotKey{pin.ClassID, pin.TimeSlotID}] {
			cc.backend.AddLinear([]Term{{Var: x, Coeff: 1}}, SenseLe, 0)
		}
	}
}

// compileDemand emits sum(x[.,c,s,.]) = demand[c,s] for every requirement
// row. A positive demand with no admissible variables is infeasible before
// the backend even runs.
func (cc *ConstraintCompiler) compileDemand() error {
	for _, c := range cc.snap.Classes() {
		for _, s := range cc.snap.Subjects() {
			demand := cc.snap.Demand(c.ID, s.ID)
			if demand == 0 {
				continue
			}
			pool := cc.vars.byClassSubj[classSubjectKey{c.ID, s.ID}]
			if len(pool) < demand {
				return fmt.Errorf("demand of %d weekly hours for class %d subject %d exceeds the %d admissible slots",
					demand, c.ID, s.ID, len(pool))
			}
			terms := make([]Term, len(pool))
			for i, x := range pool {
				terms[i] = Term{Var: x, Coeff: 1}
			}
			cc.backend.AddLinear(terms, SenseEq, demand)
		}
	}
	return nil
}

// atMost emits sum(vars) <= bound, skipping vacuous cases.
func (cc *ConstraintCompiler) atMost(vars []Var, bound int) {
	if len(vars) == 0 || len(vars) <= bound {
		return
	}
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coeff: 1}
	}
	cc.backend.AddLinear(terms, SenseLe, bound)
}
