// Package validation scores blueprint documents against the structural and
// style rubric for FastAPI blueprints. It produces a PASS/WARNING/FAIL
// checklist that authors use as feedback before a blueprint is accepted.
package validation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/c360studio/semblueprint/blueprint"
)

// Pre-compiled regex patterns
var (
	// camelCaseRe matches camelCase parameter names
	camelCaseRe = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
)

// Level is the outcome of a single check.
type Level string

const (
	// LevelPass means the check succeeded.
	LevelPass Level = "PASS"
	// LevelWarning means a recommended pattern is absent. Advisory only.
	LevelWarning Level = "WARNING"
	// LevelFail means the blueprint violates a hard requirement.
	LevelFail Level = "FAIL"
)

// CheckResult is the result of one validation check.
type CheckResult struct {
	Name    string `json:"name"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Report is the ordered list of check results for one blueprint.
type Report struct {
	BlueprintID string        `json:"blueprint_id"`
	Score       float64       `json:"overall_score"`
	Checks      []CheckResult `json:"checks"`
}

// Passed is true iff no check failed, regardless of warnings or score.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Level == LevelFail {
			return false
		}
	}
	return true
}

// Warnings returns the WARNING-level results.
func (r *Report) Warnings() []CheckResult {
	return r.filter(LevelWarning)
}

// Failures returns the FAIL-level results.
func (r *Report) Failures() []CheckResult {
	return r.filter(LevelFail)
}

// PassCount returns the number of PASS results.
func (r *Report) PassCount() int {
	return len(r.filter(LevelPass))
}

func (r *Report) filter(level Level) []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if c.Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Check inspects a blueprint and appends one or more results.
type Check struct {
	Name string
	Run  func(bp *blueprint.Blueprint) []CheckResult
}

// MarkerRequirement is a presence check over the code template text.
type MarkerRequirement struct {
	Name string
	// All markers must be present for the check to pass.
	All []string
	// Any is satisfied by one present marker; ignored when empty.
	Any        []string
	Missing    Level
	PassMsg    string
	MissingMsg string
}

// Validator runs the blueprint rubric.
type Validator struct {
	// Checks run in order; each contributes to the report.
	Checks []Check
}

// StandardPlaceholders are the template variables every CRUD-style blueprint
// is expected to use.
var StandardPlaceholders = []string{"{{modelName}}", "{{resourceName}}", "{{routePrefix}}"}

// NewValidator creates a validator with the standard FastAPI blueprint rubric.
func NewValidator() *Validator {
	return &Validator{
		Checks: []Check{
			{Name: "required fields", Run: checkRequiredFields},
			{Name: "strategy", Run: checkStrategy},
			{Name: "id format", Run: checkIDFormat},
			{Name: "parameter naming", Run: checkParameterNaming},
			{Name: "template variables", Run: checkTemplateVariables},
			markerCheck(MarkerRequirement{
				Name:       "FastAPI imports",
				All:        []string{"from fastapi import"},
				Missing:    LevelFail,
				PassMsg:    "FastAPI imports present",
				MissingMsg: "Missing FastAPI imports",
			}),
			markerCheck(MarkerRequirement{
				Name:       "Async patterns",
				All:        []string{"async def"},
				Missing:    LevelWarning,
				PassMsg:    "Async/await patterns used",
				MissingMsg: "Consider using async/await patterns for better performance",
			}),
			markerCheck(MarkerRequirement{
				Name:       "Comprehensive docstrings",
				All:        []string{`"""`, "Args:"},
				Missing:    LevelFail,
				PassMsg:    "Comprehensive docstrings with Args section",
				MissingMsg: "Missing comprehensive docstrings with Args, Returns, Raises",
			}),
			markerCheck(MarkerRequirement{
				Name:       "Error handling",
				All:        []string{"HTTPException", "try:"},
				Missing:    LevelFail,
				PassMsg:    "Error handling patterns present",
				MissingMsg: "Missing comprehensive error handling",
			}),
			markerCheck(MarkerRequirement{
				Name:       "Logging integration",
				Any:        []string{"logger", "logging"},
				Missing:    LevelWarning,
				PassMsg:    "Logging integration present",
				MissingMsg: "Consider adding structured logging",
			}),
			markerCheck(MarkerRequirement{
				Name:       "Type hints",
				All:        []string{": ", "->"},
				Missing:    LevelFail,
				PassMsg:    "Type hints present",
				MissingMsg: "Missing comprehensive type hints",
			}),
			{Name: "template language", Run: checkLanguage},
			{Name: "template flags", Run: checkFlags},
		},
	}
}

// Validate runs every check in order. The score is the fraction of PASS
// results times ten.
func (v *Validator) Validate(bp *blueprint.Blueprint) *Report {
	report := &Report{BlueprintID: bp.ID}
	if report.BlueprintID == "" {
		report.BlueprintID = "unknown"
	}

	for _, check := range v.Checks {
		report.Checks = append(report.Checks, check.Run(bp)...)
	}

	if len(report.Checks) > 0 {
		report.Score = float64(report.PassCount()) / float64(len(report.Checks)) * 10
	}
	return report
}

// ValidateFile loads and validates a blueprint file. A missing file or
// undecodable JSON yields a single failing check with score zero.
func (v *Validator) ValidateFile(path string) *Report {
	bp, err := blueprint.Load(path)
	if err != nil {
		return LoadFailure(path, err)
	}
	return v.Validate(bp)
}

// LoadFailure converts a blueprint load error into a failing report.
func LoadFailure(path string, err error) *Report {
	check := CheckResult{
		Name:    "JSON validation",
		Level:   LevelFail,
		Message: fmt.Sprintf("Invalid JSON: %v", err),
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		check = CheckResult{
			Name:    "File existence",
			Level:   LevelFail,
			Message: fmt.Sprintf("Blueprint file not found: %s", path),
		}
	case !errors.Is(err, blueprint.ErrInvalidJSON):
		check = CheckResult{
			Name:    "File read",
			Level:   LevelFail,
			Message: fmt.Sprintf("Cannot read blueprint: %v", err),
		}
	}
	return &Report{BlueprintID: "unknown", Score: 0, Checks: []CheckResult{check}}
}

// ValidateFile is a convenience function using the standard rubric.
func ValidateFile(path string) *Report {
	return NewValidator().ValidateFile(path)
}

func pass(name, msg string) CheckResult {
	return CheckResult{Name: name, Level: LevelPass, Message: msg}
}

func result(name string, ok bool, missing Level, passMsg, missingMsg string) CheckResult {
	if ok {
		return pass(name, passMsg)
	}
	return CheckResult{Name: name, Level: missing, Message: missingMsg}
}

func checkRequiredFields(bp *blueprint.Blueprint) []CheckResult {
	results := make([]CheckResult, 0, len(blueprint.RequiredFields))
	for _, field := range blueprint.RequiredFields {
		results = append(results, result(
			"Required field: "+field,
			bp.Has(field),
			LevelFail,
			fmt.Sprintf("Field '%s' present", field),
			fmt.Sprintf("Missing required field '%s'", field),
		))
	}
	return results
}

func checkStrategy(bp *blueprint.Blueprint) []CheckResult {
	return []CheckResult{result(
		"Strategy validation",
		bp.Strategy == blueprint.StrategyEmbeddedTemplate,
		LevelFail,
		"Using embedded-template strategy",
		fmt.Sprintf("Must use '%s' strategy", blueprint.StrategyEmbeddedTemplate),
	)}
}

func checkIDFormat(bp *blueprint.Blueprint) []CheckResult {
	return []CheckResult{result(
		"Blueprint ID format",
		blueprint.IDPattern.MatchString(bp.ID),
		LevelFail,
		"Blueprint ID follows naming convention",
		"Blueprint ID must follow 'smart-{component}-{resource}' pattern",
	)}
}

func checkParameterNaming(bp *blueprint.Blueprint) []CheckResult {
	var results []CheckResult
	for _, name := range bp.ParameterNames() {
		results = append(results, result(
			"Parameter naming: "+name,
			camelCaseRe.MatchString(name),
			LevelWarning,
			fmt.Sprintf("Parameter '%s' follows camelCase convention", name),
			fmt.Sprintf("Parameter '%s' should use camelCase", name),
		))
	}
	return results
}

func checkTemplateVariables(bp *blueprint.Blueprint) []CheckResult {
	content := bp.CodeTemplate.Content
	results := make([]CheckResult, 0, len(StandardPlaceholders))
	for _, v := range StandardPlaceholders {
		results = append(results, result(
			"Template variable: "+v,
			strings.Contains(content, v),
			LevelWarning,
			fmt.Sprintf("Template variable '%s' present", v),
			fmt.Sprintf("Consider using standard template variable '%s'", v),
		))
	}
	return results
}

// markerCheck builds a check from a MarkerRequirement.
func markerCheck(req MarkerRequirement) Check {
	return Check{
		Name: req.Name,
		Run: func(bp *blueprint.Blueprint) []CheckResult {
			return []CheckResult{result(req.Name, req.matches(bp.CodeTemplate.Content), req.Missing, req.PassMsg, req.MissingMsg)}
		},
	}
}

func (req MarkerRequirement) matches(content string) bool {
	for _, m := range req.All {
		if !strings.Contains(content, m) {
			return false
		}
	}
	if len(req.Any) == 0 {
		return true
	}
	for _, m := range req.Any {
		if strings.Contains(content, m) {
			return true
		}
	}
	return false
}

func checkLanguage(bp *blueprint.Blueprint) []CheckResult {
	return []CheckResult{result(
		"Template language",
		bp.CodeTemplate.Language == blueprint.LanguagePython,
		LevelFail,
		"Python language specified",
		"Must specify Python as template language",
	)}
}

func checkFlags(bp *blueprint.Blueprint) []CheckResult {
	return []CheckResult{
		result("Template executable", bp.CodeTemplate.Executable, LevelWarning,
			"Template marked as executable", "Template should be marked as executable"),
		result("Template testable", bp.CodeTemplate.Testable, LevelWarning,
			"Template marked as testable", "Template should be marked as testable"),
	}
}
