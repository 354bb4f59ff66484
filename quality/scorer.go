// Package quality computes heuristic 0-10 quality sub-scores for blueprint
// templates from a declarative marker rubric.
package quality

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxCategoryScore caps each category total.
const MaxCategoryScore = 10

// Score holds the five category sub-scores, each in [0, 10].
type Score struct {
	CodeQuality         int `json:"code_quality"`
	FrameworkPractices  int `json:"fastapi_practices"`
	ErrorHandling       int `json:"error_handling"`
	Security            int `json:"security"`
	ProductionReadiness int `json:"production_readiness"`
}

// Overall is the arithmetic mean of the sub-scores.
func (s Score) Overall() float64 {
	total := s.CodeQuality + s.FrameworkPractices + s.ErrorHandling + s.Security + s.ProductionReadiness
	return float64(total) / float64(len(Categories))
}

// Get returns the sub-score for a category.
func (s Score) Get(c Category) int {
	switch c {
	case CategoryCodeQuality:
		return s.CodeQuality
	case CategoryFrameworkPractices:
		return s.FrameworkPractices
	case CategoryErrorHandling:
		return s.ErrorHandling
	case CategorySecurity:
		return s.Security
	case CategoryProductionReadiness:
		return s.ProductionReadiness
	}
	return 0
}

func (s *Score) set(c Category, v int) {
	switch c {
	case CategoryCodeQuality:
		s.CodeQuality = v
	case CategoryFrameworkPractices:
		s.FrameworkPractices = v
	case CategoryErrorHandling:
		s.ErrorHandling = v
	case CategorySecurity:
		s.Security = v
	case CategoryProductionReadiness:
		s.ProductionReadiness = v
	}
}

// Scorer applies a rubric to template text. Safe for concurrent use.
type Scorer struct {
	rules []compiledRule
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// NewScorer validates and compiles a rubric.
func NewScorer(r *Rubric) (*Scorer, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{rules: make([]compiledRule, 0, len(r.Rules))}
	for _, rule := range r.Rules {
		cr := compiledRule{Rule: rule}
		if rule.Regex != "" {
			expr := rule.Regex
			if rule.IgnoreCase {
				expr = "(?i)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
			}
			cr.re = re
		}
		s.rules = append(s.rules, cr)
	}
	return s, nil
}

// DefaultScorer returns a scorer over DefaultRubric.
func DefaultScorer() *Scorer {
	s, err := NewScorer(DefaultRubric())
	if err != nil {
		panic(fmt.Sprintf("default rubric: %v", err))
	}
	return s
}

// Score rates template text. Within a group only the first matching rule
// contributes.
func (s *Scorer) Score(template string) Score {
	totals := make(map[Category]int, len(Categories))
	for _, rule := range s.matched(template) {
		totals[rule.Category] += rule.Points
	}

	var score Score
	for _, c := range Categories {
		score.set(c, clamp(totals[c]))
	}
	return score
}

// Explain lists the descriptions of the rules that matched, for reports.
func (s *Scorer) Explain(template string) map[Category][]string {
	out := make(map[Category][]string)
	for _, rule := range s.matched(template) {
		out[rule.Category] = append(out[rule.Category], rule.Description)
	}
	return out
}

func (s *Scorer) matched(template string) []compiledRule {
	lower := strings.ToLower(template)
	usedGroups := make(map[string]bool)

	var out []compiledRule
	for _, rule := range s.rules {
		if rule.Group != "" && usedGroups[rule.Group] {
			continue
		}
		text := template
		if rule.IgnoreCase {
			text = lower
		}
		if !rule.matches(text) {
			continue
		}
		if rule.Group != "" {
			usedGroups[rule.Group] = true
		}
		out = append(out, rule)
	}
	return out
}

func (r compiledRule) matches(text string) bool {
	for _, m := range r.All {
		if !strings.Contains(text, r.fold(m)) {
			return false
		}
	}
	if len(r.Any) > 0 {
		found := false
		for _, m := range r.Any {
			if strings.Contains(text, r.fold(m)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.re != nil && !r.re.MatchString(text) {
		return false
	}
	return true
}

func (r compiledRule) fold(marker string) string {
	if r.IgnoreCase {
		return strings.ToLower(marker)
	}
	return marker
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxCategoryScore {
		return MaxCategoryScore
	}
	return v
}
