// Package assess combines the structural report and the quality score into
// one verdict for a blueprint.
package assess

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semblueprint/blueprint"
	"github.com/c360studio/semblueprint/quality"
	"github.com/c360studio/semblueprint/validation"
)

// DefaultStandard is the minimum quality score a blueprint must reach.
const DefaultStandard = 9.5

// Assessment is the combined result of validating and scoring a blueprint.
type Assessment struct {
	ID              string             `json:"id"`
	BlueprintID     string             `json:"blueprint_id"`
	Path            string             `json:"path,omitempty"`
	Report          *validation.Report `json:"validation"`
	Quality         quality.Score      `json:"quality"`
	StructuralScore float64            `json:"structural_score"`
	QualityScore    float64            `json:"quality_score"`
	OverallScore    float64            `json:"overall_score"`
	Standard        float64            `json:"standard"`
	MeetsStandard   bool               `json:"meets_standard"`
	AssessedAt      time.Time          `json:"assessed_at"`
}

// Assessor runs the validator and scorer against a standard.
type Assessor struct {
	Validator *validation.Validator
	Scorer    *quality.Scorer
	Standard  float64
}

// New creates an Assessor. Nil collaborators fall back to the defaults and
// a negative standard to DefaultStandard. A zero standard accepts any
// quality score.
func New(v *validation.Validator, s *quality.Scorer, standard float64) *Assessor {
	if v == nil {
		v = validation.NewValidator()
	}
	if s == nil {
		s = quality.DefaultScorer()
	}
	if standard < 0 {
		standard = DefaultStandard
	}
	return &Assessor{Validator: v, Scorer: s, Standard: standard}
}

// Assess validates and scores a parsed blueprint.
func (a *Assessor) Assess(bp *blueprint.Blueprint) *Assessment {
	report := a.Validator.Validate(bp)
	score := a.Scorer.Score(bp.CodeTemplate.Content)
	return a.combine(report, score)
}

// AssessFile loads a blueprint and assesses it. Load failures produce an
// assessment that carries the failing report and zero quality.
func (a *Assessor) AssessFile(path string) *Assessment {
	bp, err := blueprint.Load(path)
	if err != nil {
		result := a.combine(validation.LoadFailure(path, err), quality.Score{})
		result.Path = path
		return result
	}
	result := a.Assess(bp)
	result.Path = path
	return result
}

func (a *Assessor) combine(report *validation.Report, score quality.Score) *Assessment {
	q := score.Overall()
	return &Assessment{
		ID:              uuid.New().String(),
		BlueprintID:     report.BlueprintID,
		Report:          report,
		Quality:         score,
		StructuralScore: report.Score,
		QualityScore:    q,
		OverallScore:    (report.Score + q) / 2,
		Standard:        a.Standard,
		MeetsStandard:   report.Passed() && q >= a.Standard,
		AssessedAt:      time.Now().UTC(),
	}
}

// FormatScore renders the overall score as recorded in task progress.
func (r *Assessment) FormatScore() string {
	return FormatScore(r.OverallScore)
}

// FormatScore renders a 0-10 score as "x.y/10".
func FormatScore(score float64) string {
	return fmt.Sprintf("%.1f/10", score)
}
