package quality

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Category names a quality dimension.
type Category string

const (
	CategoryCodeQuality         Category = "code_quality"
	CategoryFrameworkPractices  Category = "fastapi_practices"
	CategoryErrorHandling       Category = "error_handling"
	CategorySecurity            Category = "security"
	CategoryProductionReadiness Category = "production_readiness"
)

// Categories lists every known category in report order.
var Categories = []Category{
	CategoryCodeQuality,
	CategoryFrameworkPractices,
	CategoryErrorHandling,
	CategorySecurity,
	CategoryProductionReadiness,
}

// ErrInvalidRubric is returned when a rubric fails validation.
var ErrInvalidRubric = errors.New("invalid rubric")

// Rule awards Points to Category when the template matches.
type Rule struct {
	Category    Category `yaml:"category"`
	Points      int      `yaml:"points"`
	All         []string `yaml:"all,omitempty"`
	Any         []string `yaml:"any,omitempty"`
	Regex       string   `yaml:"regex,omitempty"`
	IgnoreCase  bool     `yaml:"ignore_case,omitempty"`
	Group       string   `yaml:"group,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Rubric is an ordered list of scoring rules.
type Rubric struct {
	Rules []Rule `yaml:"rules"`
}

// Validate checks categories, points and regular expressions.
func (r *Rubric) Validate() error {
	if len(r.Rules) == 0 {
		return fmt.Errorf("%w: no rules", ErrInvalidRubric)
	}
	for i, rule := range r.Rules {
		if !knownCategory(rule.Category) {
			return fmt.Errorf("%w: rule %d: unknown category %q", ErrInvalidRubric, i, rule.Category)
		}
		if rule.Points < 0 {
			return fmt.Errorf("%w: rule %d: negative points", ErrInvalidRubric, i)
		}
		if len(rule.All) == 0 && len(rule.Any) == 0 && rule.Regex == "" {
			return fmt.Errorf("%w: rule %d: no markers", ErrInvalidRubric, i)
		}
		if rule.Regex != "" {
			if _, err := regexp.Compile(rule.Regex); err != nil {
				return fmt.Errorf("%w: rule %d: %v", ErrInvalidRubric, i, err)
			}
		}
	}
	return nil
}

// LoadRubric reads a YAML rubric file.
func LoadRubric(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric: %w", err)
	}
	return ParseRubric(data)
}

// ParseRubric decodes and validates a YAML rubric.
func ParseRubric(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rubric: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Marshal encodes the rubric as YAML.
func (r *Rubric) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func knownCategory(c Category) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// DefaultRubric returns the built-in FastAPI template rubric.
func DefaultRubric() *Rubric {
	return &Rubric{Rules: []Rule{
		// Code quality
		{Category: CategoryCodeQuality, Points: 3, All: []string{`"""`, "Args:", "Returns:"}, Group: "docstrings",
			Description: "Docstrings with Args and Returns"},
		{Category: CategoryCodeQuality, Points: 1, All: []string{`"""`}, Group: "docstrings",
			Description: "Docstrings"},
		{Category: CategoryCodeQuality, Points: 2, All: []string{": ", "->"},
			Description: "Type hints"},
		{Category: CategoryCodeQuality, Points: 2, Regex: `def [a-z][a-z0-9_]*\(`,
			Description: "snake_case function names"},
		{Category: CategoryCodeQuality, Points: 1, All: []string{"#"},
			Description: "Comments"},
		{Category: CategoryCodeQuality, Points: 2, All: []string{"from", "import"},
			Description: "Organized imports"},

		// FastAPI practices
		{Category: CategoryFrameworkPractices, Points: 2, All: []string{"@router."},
			Description: "Router decorators"},
		{Category: CategoryFrameworkPractices, Points: 2, All: []string{"response_model="},
			Description: "Response models"},
		{Category: CategoryFrameworkPractices, Points: 2, All: []string{"status_code="},
			Description: "Explicit status codes"},
		{Category: CategoryFrameworkPractices, Points: 2, All: []string{"Depends("},
			Description: "Dependency injection"},
		{Category: CategoryFrameworkPractices, Points: 2, All: []string{"async def"},
			Description: "Async handlers"},

		// Error handling
		{Category: CategoryErrorHandling, Points: 3, All: []string{"try:", "except"},
			Description: "try/except blocks"},
		{Category: CategoryErrorHandling, Points: 2, All: []string{"HTTPException"},
			Description: "HTTP exceptions"},
		{Category: CategoryErrorHandling, Points: 2, Any: []string{"ValueError", "TypeError"},
			Description: "Specific exception types"},
		{Category: CategoryErrorHandling, Points: 2, All: []string{"logger.error"},
			Description: "Error logging"},
		{Category: CategoryErrorHandling, Points: 1, All: []string{"status.HTTP_"},
			Description: "Status constants"},

		// Security
		{Category: CategorySecurity, Points: 3, Any: []string{"get_current_user", "Depends(auth"},
			Description: "Authentication dependency"},
		{Category: CategorySecurity, Points: 2, Any: []string{"Field(", "Query("},
			Description: "Input validation"},
		{Category: CategorySecurity, Points: 2, Any: []string{"permission", "role"}, IgnoreCase: true,
			Description: "Authorization checks"},
		{Category: CategorySecurity, Points: 2, All: []string{"rate_limit"},
			Description: "Rate limiting"},
		{Category: CategorySecurity, Points: 1, All: []string{"cors"}, IgnoreCase: true,
			Description: "CORS configuration"},

		// Production readiness
		{Category: CategoryProductionReadiness, Points: 2, All: []string{"logger"},
			Description: "Logging"},
		{Category: CategoryProductionReadiness, Points: 2, Any: []string{"metrics", "monitoring"},
			Description: "Monitoring"},
		{Category: CategoryProductionReadiness, Points: 2, Any: []string{"config", "settings"},
			Description: "Configuration"},
		{Category: CategoryProductionReadiness, Points: 1, All: []string{"health"},
			Description: "Health checks"},
		{Category: CategoryProductionReadiness, Points: 2, All: []string{"skip", "limit"},
			Description: "Pagination"},
		{Category: CategoryProductionReadiness, Points: 1, All: []string{"cache"},
			Description: "Caching"},
	}}
}
