package dto

import (
	"time"

	"github.com/grundschule/stundenplan-api/internal/models"
)

// GenerateScheduleRequest is the closed option set of the generate and
// optimize operations.
type GenerateScheduleRequest struct {
	PreserveExisting bool   `json:"preserve_existing"`
	ClearExisting    bool   `json:"clear_existing"`
	TimeLimitSeconds int    `json:"time_limit_seconds" validate:"omitempty,min=1,max=3600"`
	ReferenceDate    string `json:"reference_date" validate:"omitempty,datetime=2006-01-02"`
	RandomSeed       *int64 `json:"random_seed"`
}

// SolveResponse mirrors models.SolveResult for the REST surface.
type SolveResponse struct {
	RunID                string                  `json:"run_id"`
	Entries              []models.ScheduleEntry  `json:"entries"`
	QualityScore         float64                 `json:"quality_score"`
	QualityBreakdown     models.QualityBreakdown `json:"quality_breakdown"`
	GenerationSeconds    float64                 `json:"generation_seconds"`
	SatisfiedConstraints []string                `json:"satisfied_constraints"`
	ViolatedConstraints  []string                `json:"violated_constraints"`
	ObjectiveValue       int64                   `json:"objective_value"`
	Feasible             bool                    `json:"feasible"`
}

// SolveResponseFrom converts a solve result.
func SolveResponseFrom(result *models.SolveResult) *SolveResponse {
	return &SolveResponse{
		RunID:                result.RunID,
		Entries:              result.Entries,
		QualityScore:         result.QualityScore,
		QualityBreakdown:     result.QualityBreakdown,
		GenerationSeconds:    result.GenerationTime.Seconds(),
		SatisfiedConstraints: result.SatisfiedConstraints,
		ViolatedConstraints:  result.ViolatedConstraints,
		ObjectiveValue:       result.ObjectiveValue,
		Feasible:             result.Feasible,
	}
}

// ParseReferenceDate resolves the optional reference date, defaulting to
// today (UTC).
func (r GenerateScheduleRequest) ParseReferenceDate() time.Time {
	if r.ReferenceDate == "" {
		return time.Now().UTC()
	}
	parsed, err := time.Parse("2006-01-02", r.ReferenceDate)
	if err != nil {
		return time.Now().UTC()
	}
	return parsed
}
