package quality

import (
	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
	"github.com/grundschule/stundenplan-api/internal/solver"
)

// Rubric weights. They sum to 100 so the weighted average stays in [0,100].
const (
	weightAvailability  = 25
	weightQualification = 20
	weightPedagogical   = 20
	weightWorkload      = 15
	weightEfficiency    = 10
	weightCompliance    = 10
)

// Scorer computes a 0-100 quality score from an extracted schedule,
// independent of the solver's internal objective, so runs with different
// backends stay comparable.
type Scorer struct {
	snap *snapshot.Snapshot
}

// NewScorer builds a scorer over the solve's snapshot.
func NewScorer(snap *snapshot.Snapshot) *Scorer {
	return &Scorer{snap: snap}
}

// Score evaluates the six rubrics. hardViolations is the number of entries
// the conflict detector flagged; a correct solve passes zero. Rubrics with
// an empty denominator (no entries, no active teachers) score 100
// vacuously, so an empty schedule scores a perfect 100.
func (s *Scorer) Score(entries []models.ScheduleEntry, hardViolations int) models.QualityBreakdown {
	b := models.QualityBreakdown{
		Availability:  s.availabilityScore(entries),
		Qualification: s.qualificationScore(entries),
		Pedagogical:   s.pedagogicalScore(entries),
		Workload:      s.workloadScore(entries),
		Efficiency:    s.efficiencyScore(entries),
		Compliance:    complianceScore(hardViolations),
	}
	total := b.Availability*weightAvailability +
		b.Qualification*weightQualification +
		b.Pedagogical*weightPedagogical +
		b.Workload*weightWorkload +
		b.Efficiency*weightEfficiency +
		b.Compliance*weightCompliance
	b.Total = clamp(total / 100)
	return b
}

// availabilityScore: 100 for a PREFERRED cell, 50 baseline otherwise,
// blended linearly by entry count.
func (s *Scorer) availabilityScore(entries []models.ScheduleEntry) float64 {
	if len(entries) == 0 {
		return 100
	}
	var sum float64
	for _, e := range entries {
		slot, ok := s.snap.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		kind, has := s.snap.Availability(e.TeacherID, slot.Weekday(), slot.Period)
		if has && kind == models.AvailabilityPreferred {
			sum += 100
		} else {
			sum += 50
		}
	}
	return sum / float64(len(entries))
}

// qualificationScore: PRIMARY=100, SECONDARY=70, SUBSTITUTE=30, averaged.
func (s *Scorer) qualificationScore(entries []models.ScheduleEntry) float64 {
	if len(entries) == 0 {
		return 100
	}
	var sum float64
	for _, e := range entries {
		q, ok := s.snap.Qualification(e.TeacherID, e.SubjectID)
		if !ok {
			continue // a hard violation; compliance pays for it
		}
		switch q.Level {
		case models.QualificationPrimary:
			sum += 100
		case models.QualificationSecondary:
			sum += 70
		case models.QualificationSubstitute:
			sum += 30
		}
	}
	return sum / float64(len(entries))
}

// pedagogicalScore: core subjects before period 4 score 100, later 50.
// Sport from period 4 on scores 100, earlier 30. Everything else 100.
func (s *Scorer) pedagogicalScore(entries []models.ScheduleEntry) float64 {
	if len(entries) == 0 {
		return 100
	}
	var sum float64
	for _, e := range entries {
		slot, ok := s.snap.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		subject, _ := s.snap.Subject(e.SubjectID)
		switch {
		case solver.IsCoreSubject(subject):
			if slot.Period <= 3 {
				sum += 100
			} else {
				sum += 50
			}
		case solver.IsSportSubject(subject):
			if slot.Period >= 4 {
				sum += 100
			} else {
				sum += 30
			}
		default:
			sum += 100
		}
	}
	return sum / float64(len(entries))
}

// workloadScore: per teacher with any lessons, 8-15 weekly lessons score
// 100, 5-20 score 70, anything else positive 30; averaged over active
// teachers.
func (s *Scorer) workloadScore(entries []models.ScheduleEntry) float64 {
	counts := make(map[int64]int)
	for _, e := range entries {
		counts[e.TeacherID]++
	}
	if len(counts) == 0 {
		return 100
	}
	var sum float64
	for _, n := range counts {
		switch {
		case n >= 8 && n <= 15:
			sum += 100
		case n >= 5 && n <= 20:
			sum += 70
		default:
			sum += 30
		}
	}
	return sum / float64(len(counts))
}

// efficiencyScore: per class, lessons spread over 4-5 days score 100,
// 3 days 70, 2 days 40, a single day 10; averaged over active classes.
func (s *Scorer) efficiencyScore(entries []models.ScheduleEntry) float64 {
	days := make(map[int64]map[int]struct{})
	for _, e := range entries {
		slot, ok := s.snap.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		if days[e.ClassID] == nil {
			days[e.ClassID] = make(map[int]struct{})
		}
		days[e.ClassID][slot.Day] = struct{}{}
	}
	if len(days) == 0 {
		return 100
	}
	var sum float64
	for _, used := range days {
		switch len(used) {
		case 0:
		case 1:
			sum += 10
		case 2:
			sum += 40
		case 3:
			sum += 70
		default:
			sum += 100
		}
	}
	return sum / float64(len(days))
}

// complianceScore: 100 minus 10 per hard violation, floored at 0.
func complianceScore(hardViolations int) float64 {
	score := 100 - float64(hardViolations)*10
	if score < 0 {
		return 0
	}
	return score
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
