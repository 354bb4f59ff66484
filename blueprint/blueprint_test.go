package blueprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FieldPresence(t *testing.T) {
	bp, err := Parse([]byte(`{"id": "smart-a", "name": "", "parameters": {}}`))
	require.NoError(t, err)

	assert.True(t, bp.Has(FieldID))
	assert.True(t, bp.Has(FieldName), "empty value still counts as present")
	assert.True(t, bp.Has(FieldParameters))
	assert.False(t, bp.Has(FieldVersion))
	assert.False(t, bp.Has(FieldCodeTemplate))
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"id": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidJSON))

	for _, doc := range []string{`[1, 2]`, `"text"`, `null`} {
		_, err = Parse([]byte(doc))
		assert.True(t, errors.Is(err, ErrInvalidJSON), doc)
	}
}

func TestParse_WrongFieldTypes(t *testing.T) {
	bp, err := Parse([]byte(`{
		"id": "smart-a-b",
		"version": 1,
		"codeTemplate": {"language": "python", "executable": "true", "testable": true, "content": "x"},
		"testTemplate": "not an object",
		"metadata": {"estimatedTokens": "1500", "generationTime": "2s"},
		"parameters": {"modelName": {"type": "string", "required": "yes"}, "flag": 3}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "smart-a-b", bp.ID)
	assert.True(t, bp.Has(FieldVersion))
	assert.Empty(t, bp.Version)

	assert.Equal(t, "python", bp.CodeTemplate.Language)
	assert.False(t, bp.CodeTemplate.Executable)
	assert.True(t, bp.CodeTemplate.Testable)
	assert.Equal(t, "x", bp.CodeTemplate.Content)

	assert.True(t, bp.Has(FieldTestTemplate))
	assert.Nil(t, bp.TestTemplate)

	require.NotNil(t, bp.Metadata)
	assert.Zero(t, bp.Metadata.EstimatedTokens)
	assert.Equal(t, "2s", bp.Metadata.GenerationTime)

	require.Len(t, bp.Parameters, 2)
	assert.Equal(t, ParameterSpec{Type: "string"}, bp.Parameters["modelName"])
	assert.Equal(t, ParameterSpec{}, bp.Parameters["flag"])
}

func TestHas_CodeBuilt(t *testing.T) {
	bp := &Blueprint{ID: "smart-a", CodeTemplate: CodeTemplate{Content: "x"}}
	assert.True(t, bp.Has(FieldID))
	assert.True(t, bp.Has(FieldCodeTemplate))
	assert.False(t, bp.Has(FieldStrategy))
	assert.False(t, bp.Has(FieldParameters))
	assert.False(t, bp.Has("unknown"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smart-x-y.json")
	require.NoError(t, os.WriteFile(path, []byte(scenarioJSON), 0644))

	bp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "smart-x-y", bp.ID)
	assert.Equal(t, StrategyEmbeddedTemplate, bp.Strategy)
	assert.True(t, bp.Parameters["resourceName"].Required)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("smart-crud-route"))
	assert.NoError(t, ValidateID("smart-a1"))
	for _, id := range []string{"crud-route", "smart-", "smart-Crud", "smart-1abc", "smart_crud"} {
		err := ValidateID(id)
		assert.True(t, errors.Is(err, ErrInvalidID), id)
	}
}
