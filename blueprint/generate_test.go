package blueprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioJSON = `{
  "id": "smart-x-y",
  "strategy": "embedded-template",
  "parameters": {"resourceName": {"type": "string", "required": true}},
  "codeTemplate": {"language": "python", "content": "Hello {{resourceName}}"}
}`

func TestGenerate_Scenario(t *testing.T) {
	bp, err := Parse([]byte(scenarioJSON))
	require.NoError(t, err)

	out, err := Generate(bp, map[string]any{"resourceName": "cat"})
	require.NoError(t, err)
	assert.Equal(t, "Hello cat", out.Code)
	assert.False(t, out.HasTest())
}

func TestGenerate_MissingRequired(t *testing.T) {
	bp, err := Parse([]byte(scenarioJSON))
	require.NoError(t, err)

	out, err := Generate(bp, map[string]any{})
	require.Error(t, err)
	assert.True(t, IsMissingParameter(err))
	assert.Nil(t, out)
}

func TestGenerate_TestTemplate(t *testing.T) {
	bp := &Blueprint{
		ID:           "smart-user-routes",
		Parameters:   map[string]ParameterSpec{"modelName": {Type: TypeString, Required: true}},
		CodeTemplate: CodeTemplate{Language: "python", Content: "class {{modelName}}: pass"},
		TestTemplate: &CodeTemplate{Language: "python", Content: "def test_{{modelName}}(): pass"},
	}

	out, err := Generate(bp, map[string]any{"modelName": "User"})
	require.NoError(t, err)
	assert.Equal(t, "class User: pass", out.Code)
	assert.Equal(t, "def test_User(): pass", out.Test)
}

func TestGenerate_MalformedTestTemplate(t *testing.T) {
	bp := &Blueprint{
		ID:           "smart-user-routes",
		CodeTemplate: CodeTemplate{Content: "ok"},
		TestTemplate: &CodeTemplate{Content: "{{#if a}}never closed"},
	}
	out, err := Generate(bp, nil)
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestSampleBindings(t *testing.T) {
	bp := &Blueprint{
		Parameters: map[string]ParameterSpec{
			"resourceName": {Type: TypeString, Pattern: "^[a-z_]+$", Description: "Resource name in snake_case"},
			"modelName":    {Type: TypeString, Pattern: "^[A-Z]", Description: "Model name in PascalCase"},
			"routePrefix":  {Type: TypeString, Pattern: "^/"},
			"tag":          {Type: TypeString, Default: "users"},
			"plain":        {},
			"authRequired": {Type: TypeBoolean, Default: false},
			"cache":        {Type: TypeBoolean},
			"pageSize":     {Type: TypeInteger, Default: 50.0},
			"retries":      {Type: TypeInteger},
			"options":      {Type: "object"},
		},
	}

	params := SampleBindings(bp)
	assert.Equal(t, "sample_resource", params["resourceName"])
	assert.Equal(t, "SampleResource", params["modelName"])
	assert.Equal(t, "sample", params["routePrefix"])
	assert.Equal(t, "users", params["tag"])
	assert.Equal(t, "sample", params["plain"])
	assert.Equal(t, false, params["authRequired"])
	assert.Equal(t, true, params["cache"])
	assert.Equal(t, 50.0, params["pageSize"])
	assert.Equal(t, 1, params["retries"])
	assert.NotContains(t, params, "options")
}

func TestExtract(t *testing.T) {
	bp := &Blueprint{
		ID: "smart-user-routes",
		Parameters: map[string]ParameterSpec{
			"modelName":    {Type: TypeString, Required: true},
			"authRequired": {Type: TypeBoolean},
		},
		CodeTemplate: CodeTemplate{Content: "{{modelName}}{{#if authRequired}} auth{{/if}}"},
	}

	out, err := Extract(bp)
	require.NoError(t, err)
	assert.Equal(t, "sample auth", out.Code)
}

func TestDescribe(t *testing.T) {
	bp := &Blueprint{
		ID:         "smart-x",
		Parameters: map[string]ParameterSpec{"b": {}, "a": {}},
	}
	info := Describe(bp)
	assert.Equal(t, 1000, info.EstimatedTokens)
	assert.Equal(t, "<1s", info.GenerationTime)
	assert.Equal(t, []string{"a", "b"}, info.Parameters)
	assert.Equal(t, LanguagePython, info.Language)
	assert.False(t, info.Testable)

	bp.Metadata = &Metadata{EstimatedTokens: 2500, GenerationTime: "2s"}
	bp.TestTemplate = &CodeTemplate{Content: "x"}
	info = Describe(bp)
	assert.Equal(t, 2500, info.EstimatedTokens)
	assert.Equal(t, "2s", info.GenerationTime)
	assert.True(t, info.Testable)
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app", "routes", "user_routes.py")
	require.NoError(t, WriteOutput(path, "print('hi')\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
}
