package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/semblueprint/render"
)

// Output is the text produced from a blueprint for one parameter binding.
type Output struct {
	BlueprintID string `json:"blueprint_id"`
	Code        string `json:"code"`
	Test        string `json:"test,omitempty"`
}

// HasTest reports whether a test file was rendered.
func (o *Output) HasTest() bool {
	return o.Test != ""
}

// Generate validates bindings and renders the code template and, when
// present, the test template. Nothing is returned unless both succeed.
func Generate(bp *Blueprint, bindings map[string]any) (*Output, error) {
	if err := ValidateBindings(bp.Parameters, bindings); err != nil {
		return nil, err
	}

	code, err := render.Render(bp.CodeTemplate.Content, bindings)
	if err != nil {
		return nil, fmt.Errorf("render code template: %w", err)
	}

	out := &Output{BlueprintID: bp.ID, Code: code}
	if bp.TestTemplate != nil && bp.TestTemplate.Content != "" {
		test, err := render.Render(bp.TestTemplate.Content, bindings)
		if err != nil {
			return nil, fmt.Errorf("render test template: %w", err)
		}
		out.Test = test
	}
	return out, nil
}

// SampleBindings builds a plausible binding for every declared parameter so a
// template can be rendered without user input.
func SampleBindings(bp *Blueprint) map[string]any {
	params := make(map[string]any, len(bp.Parameters))
	for name, spec := range bp.Parameters {
		switch spec.Type {
		case "", TypeString:
			switch {
			case spec.Pattern != "" && strings.Contains(spec.Description, "snake_case"):
				params[name] = "sample_resource"
			case spec.Pattern != "" && strings.Contains(spec.Description, "PascalCase"):
				params[name] = "SampleResource"
			case spec.Pattern != "":
				params[name] = "sample"
			case spec.Default != nil:
				params[name] = spec.Default
			default:
				params[name] = "sample"
			}
		case TypeBoolean:
			if spec.Default != nil {
				params[name] = spec.Default
			} else {
				params[name] = true
			}
		case TypeInteger:
			if spec.Default != nil {
				params[name] = spec.Default
			} else {
				params[name] = 1
			}
		}
	}
	return params
}

// Extract renders the blueprint with SampleBindings.
func Extract(bp *Blueprint) (*Output, error) {
	return Generate(bp, SampleBindings(bp))
}

// Info summarizes a blueprint for tooling.
type Info struct {
	ID              string   `json:"id"`
	EstimatedTokens int      `json:"estimatedTokens"`
	GenerationTime  string   `json:"generationTime"`
	Parameters      []string `json:"parameters"`
	Language        string   `json:"language"`
	Testable        bool     `json:"testable"`
	// Validated reports whether the sample rendering parsed cleanly. Describe
	// leaves it false; callers that run a syntax check set it.
	Validated bool `json:"validated"`
}

// Describe returns the blueprint's generation metadata with defaults applied.
func Describe(bp *Blueprint) Info {
	info := Info{
		ID:              bp.ID,
		EstimatedTokens: 1000,
		GenerationTime:  "<1s",
		Parameters:      bp.ParameterNames(),
		Language:        bp.CodeTemplate.Language,
		Testable:        bp.TestTemplate != nil,
	}
	if bp.Metadata != nil {
		if bp.Metadata.EstimatedTokens > 0 {
			info.EstimatedTokens = bp.Metadata.EstimatedTokens
		}
		if bp.Metadata.GenerationTime != "" {
			info.GenerationTime = bp.Metadata.GenerationTime
		}
	}
	if info.Language == "" {
		info.Language = LanguagePython
	}
	return info
}

// WriteOutput writes generated text to path, creating parent directories.
func WriteOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
