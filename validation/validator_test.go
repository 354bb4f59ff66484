package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semblueprint/blueprint"
)

const goodTemplate = `from fastapi import APIRouter, Depends, HTTPException, status
import logging

logger = logging.getLogger(__name__)
router = APIRouter(prefix="{{routePrefix}}")


@router.get("/{item_id}", response_model={{modelName}})
async def get_{{resourceName}}(item_id: int) -> {{modelName}}:
    """Fetch one item.

    Args:
        item_id: identifier
    """
    try:
        return await service.get(item_id)
    except ValueError as exc:
        logger.error("lookup failed: %s", exc)
        raise HTTPException(status_code=status.HTTP_404_NOT_FOUND)
`

func goodBlueprint() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		ID:          "smart-crud-route",
		Name:        "Smart CRUD Route",
		Description: "CRUD routes",
		Version:     "1.0.0",
		Strategy:    blueprint.StrategyEmbeddedTemplate,
		Parameters: map[string]blueprint.ParameterSpec{
			"modelName":    {Type: "string", Required: true},
			"resourceName": {Type: "string", Required: true},
			"routePrefix":  {Type: "string", Required: true},
		},
		CodeTemplate: blueprint.CodeTemplate{
			Language:   "python",
			Executable: true,
			Testable:   true,
			Content:    goodTemplate,
		},
	}
}

func levels(r *Report) map[string]Level {
	out := make(map[string]Level, len(r.Checks))
	for _, c := range r.Checks {
		out[c.Name] = c.Level
	}
	return out
}

func TestValidate_Perfect(t *testing.T) {
	report := NewValidator().Validate(goodBlueprint())

	assert.True(t, report.Passed())
	assert.Empty(t, report.Warnings())
	assert.InDelta(t, 10.0, report.Score, 1e-9)
	// 7 fields + strategy + id + 3 params + 3 variables + 6 markers + language + 2 flags
	assert.Len(t, report.Checks, 24)
	assert.Equal(t, "smart-crud-route", report.BlueprintID)
}

func TestValidate_CheckOrder(t *testing.T) {
	report := NewValidator().Validate(goodBlueprint())

	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
	}
	expected := []string{
		"Required field: id",
		"Required field: name",
		"Required field: description",
		"Required field: version",
		"Required field: strategy",
		"Required field: parameters",
		"Required field: codeTemplate",
		"Strategy validation",
		"Blueprint ID format",
		"Parameter naming: modelName",
		"Parameter naming: resourceName",
		"Parameter naming: routePrefix",
		"Template variable: {{modelName}}",
		"Template variable: {{resourceName}}",
		"Template variable: {{routePrefix}}",
		"FastAPI imports",
		"Async patterns",
		"Comprehensive docstrings",
		"Error handling",
		"Logging integration",
		"Type hints",
		"Template language",
		"Template executable",
		"Template testable",
	}
	assert.Equal(t, expected, names)
}

func TestValidate_MissingFieldFails(t *testing.T) {
	for _, field := range blueprint.RequiredFields {
		t.Run(field, func(t *testing.T) {
			raw := map[string]string{
				"id":           `"id": "smart-crud-route"`,
				"name":         `"name": "n"`,
				"description":  `"description": "d"`,
				"version":      `"version": "1.0.0"`,
				"strategy":     `"strategy": "embedded-template"`,
				"parameters":   `"parameters": {}`,
				"codeTemplate": `"codeTemplate": {"language": "python", "content": ""}`,
			}
			delete(raw, field)
			var parts []string
			for _, f := range blueprint.RequiredFields {
				if p, ok := raw[f]; ok {
					parts = append(parts, p)
				}
			}
			bp, err := blueprint.Parse([]byte("{" + strings.Join(parts, ",") + "}"))
			require.NoError(t, err)

			report := NewValidator().Validate(bp)
			assert.False(t, report.Passed())
			assert.Equal(t, LevelFail, levels(report)["Required field: "+field])
		})
	}
}

func TestValidate_WarningsStillPass(t *testing.T) {
	bp := goodBlueprint()
	bp.CodeTemplate.Executable = false
	bp.CodeTemplate.Testable = false
	bp.CodeTemplate.Content = strings.ReplaceAll(bp.CodeTemplate.Content, "async def", "def")
	bp.CodeTemplate.Content = strings.ReplaceAll(bp.CodeTemplate.Content, "{{routePrefix}}", "/items")
	bp.Parameters["route_prefix"] = blueprint.ParameterSpec{Type: "string"}

	report := NewValidator().Validate(bp)
	lv := levels(report)

	assert.True(t, report.Passed(), "warnings never fail a report")
	assert.Equal(t, LevelWarning, lv["Async patterns"])
	assert.Equal(t, LevelWarning, lv["Template executable"])
	assert.Equal(t, LevelWarning, lv["Template testable"])
	assert.Equal(t, LevelWarning, lv["Template variable: {{routePrefix}}"])
	assert.Equal(t, LevelWarning, lv["Parameter naming: route_prefix"])
	assert.Len(t, report.Warnings(), 5)
	assert.Less(t, report.Score, 10.0)
}

func TestValidate_LowScoreCanPass(t *testing.T) {
	bp := goodBlueprint()
	bp.Parameters = map[string]blueprint.ParameterSpec{
		"A": {}, "B": {}, "C": {}, "D": {}, "E": {}, "F": {}, "G": {}, "H": {},
		"I": {}, "J": {}, "K": {}, "L": {}, "M": {}, "N": {}, "O": {}, "P": {},
		"Q": {}, "R": {}, "S": {}, "T": {}, "U": {}, "V": {}, "W": {}, "X": {},
	}
	bp.CodeTemplate.Content = strings.NewReplacer(
		"{{routePrefix}}", "", "{{modelName}}", "", "{{resourceName}}", "", "async def", "def", "logger", "log", "logging", "log",
	).Replace(bp.CodeTemplate.Content)
	bp.CodeTemplate.Executable = false
	bp.CodeTemplate.Testable = false

	report := NewValidator().Validate(bp)
	assert.True(t, report.Passed())
	assert.Less(t, report.Score, 5.0)
}

func TestValidate_StrategySentinel(t *testing.T) {
	for _, strategy := range []string{"", "template", "Embedded-Template", "embedded-template "} {
		bp := goodBlueprint()
		bp.Strategy = strategy

		report := NewValidator().Validate(bp)
		assert.False(t, report.Passed(), "strategy %q", strategy)
		assert.Equal(t, LevelFail, levels(report)["Strategy validation"])
	}
}

func TestValidate_HardFailures(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*blueprint.Blueprint)
		check  string
	}{
		{"bad id", func(b *blueprint.Blueprint) { b.ID = "crud-route" }, "Blueprint ID format"},
		{"no fastapi import", func(b *blueprint.Blueprint) {
			b.CodeTemplate.Content = strings.Replace(b.CodeTemplate.Content, "from fastapi import", "import fastapi", 1)
		}, "FastAPI imports"},
		{"no docstring args", func(b *blueprint.Blueprint) {
			b.CodeTemplate.Content = strings.Replace(b.CodeTemplate.Content, "Args:", "Params:", 1)
		}, "Comprehensive docstrings"},
		{"no try", func(b *blueprint.Blueprint) {
			b.CodeTemplate.Content = strings.Replace(b.CodeTemplate.Content, "try:", "if True:", 1)
		}, "Error handling"},
		{"no return arrow", func(b *blueprint.Blueprint) {
			b.CodeTemplate.Content = strings.Replace(b.CodeTemplate.Content, "->", "", 1)
		}, "Type hints"},
		{"wrong language", func(b *blueprint.Blueprint) { b.CodeTemplate.Language = "go" }, "Template language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := goodBlueprint()
			tt.modify(bp)
			report := NewValidator().Validate(bp)
			assert.False(t, report.Passed())
			assert.Equal(t, LevelFail, levels(report)[tt.check])
		})
	}
}

func TestValidate_UnknownID(t *testing.T) {
	report := NewValidator().Validate(&blueprint.Blueprint{})
	assert.Equal(t, "unknown", report.BlueprintID)
	assert.False(t, report.Passed())
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		report := ValidateFile(filepath.Join(dir, "nope.json"))
		require.Len(t, report.Checks, 1)
		assert.Equal(t, "File existence", report.Checks[0].Name)
		assert.False(t, report.Passed())
		assert.Zero(t, report.Score)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		report := ValidateFile(path)
		require.Len(t, report.Checks, 1)
		assert.Equal(t, "JSON validation", report.Checks[0].Name)
		assert.False(t, report.Passed())
	})

	t.Run("valid file", func(t *testing.T) {
		data, err := goodBlueprint().Marshal()
		require.NoError(t, err)
		path := filepath.Join(dir, "smart-crud-route.json")
		require.NoError(t, os.WriteFile(path, data, 0644))

		report := ValidateFile(path)
		assert.True(t, report.Passed())
		assert.InDelta(t, 10.0, report.Score, 1e-9)
	})
}

func TestFormat(t *testing.T) {
	bp := goodBlueprint()
	bp.Strategy = "other"
	bp.CodeTemplate.Testable = false
	report := NewValidator().Validate(bp)

	out := report.Format()
	assert.Contains(t, out, "Status: FAILED")
	assert.Contains(t, out, "Strategy validation")
	assert.Contains(t, out, "Template testable")
	assert.Contains(t, out, "Passed Checks: 22/24")

	feedback := report.FormatFeedback()
	assert.Contains(t, feedback, "## Validation Failed")
	assert.Contains(t, feedback, "### Warnings")

	clean := NewValidator().Validate(goodBlueprint())
	assert.Empty(t, clean.FormatFeedback())
	assert.Contains(t, clean.Format(), "Status: PASSED")
}

func TestValidate_Skeleton(t *testing.T) {
	report := NewValidator().Validate(blueprint.Skeleton("smart-widget-routes", "Smart Widget Routes", "Widget CRUD"))
	assert.True(t, report.Passed())
	assert.Empty(t, report.Warnings())
	assert.InDelta(t, 10.0, report.Score, 1e-9)
}

func TestValidateFile_WrongFieldTypes(t *testing.T) {
	data, err := goodBlueprint().Marshal()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	doc["version"] = 1
	doc["codeTemplate"].(map[string]any)["executable"] = "true"
	doc["metadata"] = map[string]any{"estimatedTokens": "1500"}

	data, err = json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "smart-crud-route.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	report := ValidateFile(path)
	require.Len(t, report.Checks, 24)
	assert.Equal(t, "smart-crud-route", report.BlueprintID)
	assert.True(t, report.Passed())

	got := levels(report)
	assert.Equal(t, LevelPass, got["Required field: version"])
	assert.Equal(t, LevelWarning, got["Template executable"])
	assert.Equal(t, LevelPass, got["Template testable"])
	assert.InDelta(t, 230.0/24, report.Score, 1e-9)
}
