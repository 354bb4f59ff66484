package assess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semblueprint/blueprint"
	"github.com/c360studio/semblueprint/quality"
)

const content = `from fastapi import APIRouter, Depends, HTTPException, status
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

func testBlueprint() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		ID:          "smart-crud-route",
		Name:        "Smart CRUD Route",
		Description: "CRUD routes",
		Version:     "1.0.0",
		Strategy:    blueprint.StrategyEmbeddedTemplate,
		Parameters: map[string]blueprint.ParameterSpec{
			"modelName": {Type: "string", Required: true},
		},
		CodeTemplate: blueprint.CodeTemplate{
			Language:   "python",
			Executable: true,
			Testable:   true,
			Content:    content,
		},
	}
}

func TestAssess(t *testing.T) {
	a := New(nil, nil, -1)
	assert.Equal(t, DefaultStandard, a.Standard)

	result := a.Assess(testBlueprint())

	_, err := uuid.Parse(result.ID)
	require.NoError(t, err)
	assert.Equal(t, "smart-crud-route", result.BlueprintID)
	assert.True(t, result.Report.Passed())
	assert.InDelta(t, result.Report.Score, result.StructuralScore, 1e-9)
	assert.InDelta(t, result.Quality.Overall(), result.QualityScore, 1e-9)
	assert.InDelta(t, (result.StructuralScore+result.QualityScore)/2, result.OverallScore, 1e-9)
	// The template has no security markers, so it cannot reach 9.5.
	assert.False(t, result.MeetsStandard)
	assert.False(t, result.AssessedAt.IsZero())
}

func TestAssess_MeetsStandard(t *testing.T) {
	rubric := &quality.Rubric{Rules: []quality.Rule{}}
	for _, c := range quality.Categories {
		rubric.Rules = append(rubric.Rules, quality.Rule{Category: c, Points: 10, All: []string{"fastapi"}})
	}
	scorer, err := quality.NewScorer(rubric)
	require.NoError(t, err)

	a := New(nil, scorer, 9.5)
	result := a.Assess(testBlueprint())
	assert.Equal(t, 10.0, result.QualityScore)
	assert.True(t, result.MeetsStandard)

	bp := testBlueprint()
	bp.Strategy = "other"
	result = a.Assess(bp)
	assert.False(t, result.MeetsStandard, "a failing report never meets the standard")
}

func TestAssessFile(t *testing.T) {
	dir := t.TempDir()
	a := New(nil, nil, -1)

	missing := a.AssessFile(filepath.Join(dir, "missing.json"))
	assert.False(t, missing.Report.Passed())
	assert.Zero(t, missing.OverallScore)
	assert.False(t, missing.MeetsStandard)

	data, err := testBlueprint().Marshal()
	require.NoError(t, err)
	path := filepath.Join(dir, "smart-crud-route.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	result := a.AssessFile(path)
	assert.Equal(t, path, result.Path)
	assert.True(t, result.Report.Passed())
	assert.NotEqual(t, missing.ID, result.ID)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "9.5/10", FormatScore(9.5))
	assert.Equal(t, "10.0/10", FormatScore(10))
	assert.Equal(t, "7.3/10", (&Assessment{OverallScore: 7.25001}).FormatScore())
}

func TestAssess_ZeroStandard(t *testing.T) {
	a := New(nil, nil, 0)
	assert.Zero(t, a.Standard)

	result := a.Assess(testBlueprint())
	assert.True(t, result.Report.Passed())
	assert.True(t, result.MeetsStandard)
}
