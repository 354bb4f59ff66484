// Package blueprint models smart blueprints: JSON documents describing one
// generatable FastAPI artifact, its parameter schema and an embedded code
// template.
package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
)

const (
	// StrategyEmbeddedTemplate is the only supported blueprint strategy.
	StrategyEmbeddedTemplate = "embedded-template"

	// LanguagePython is the expected template language.
	LanguagePython = "python"

	// FileExt is the extension of blueprint files.
	FileExt = ".json"
)

// Top-level field names of a blueprint document.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldVersion      = "version"
	FieldStrategy     = "strategy"
	FieldParameters   = "parameters"
	FieldCodeTemplate = "codeTemplate"
	FieldTestTemplate = "testTemplate"
	FieldValidation   = "validation"
	FieldRollback     = "rollback"
	FieldMetadata     = "metadata"
)

// RequiredFields lists the fields every blueprint must declare, in check order.
var RequiredFields = []string{
	FieldID,
	FieldName,
	FieldDescription,
	FieldVersion,
	FieldStrategy,
	FieldParameters,
	FieldCodeTemplate,
}

// IDPattern is the naming convention for blueprint identifiers.
var IDPattern = regexp.MustCompile(`^smart-[a-z][a-z0-9-]*$`)

// Parameter types understood by the binding validator. Other types pass
// through unchecked.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
)

// Blueprint is a parsed blueprint document.
type Blueprint struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Version      string                   `json:"version"`
	Strategy     string                   `json:"strategy"`
	Parameters   map[string]ParameterSpec `json:"parameters"`
	CodeTemplate CodeTemplate             `json:"codeTemplate"`
	TestTemplate *CodeTemplate            `json:"testTemplate,omitempty"`
	Validation   map[string]any           `json:"validation,omitempty"`
	Rollback     map[string]any           `json:"rollback,omitempty"`
	Metadata     *Metadata                `json:"metadata,omitempty"`

	// fields records which top-level keys were present in the source JSON.
	// Nil for blueprints built in code.
	fields map[string]bool
}

// ParameterSpec declares one template parameter.
type ParameterSpec struct {
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Default     any    `json:"default,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Description string `json:"description,omitempty"`
}

// CodeTemplate is an embedded template and its flags.
type CodeTemplate struct {
	Language   string `json:"language"`
	Executable bool   `json:"executable,omitempty"`
	Testable   bool   `json:"testable,omitempty"`
	Content    string `json:"content"`
}

// Metadata carries free-form generation hints.
type Metadata struct {
	EstimatedTokens int    `json:"estimatedTokens,omitempty"`
	GenerationTime  string `json:"generationTime,omitempty"`
	QualityTarget   any    `json:"qualityTarget,omitempty"`
}

// Parse decodes a blueprint from JSON, remembering which top-level fields
// the document declared. Decoding is per field: a value of the wrong type
// leaves that field at its zero value while Has still reports it present.
// Only input that is not a JSON object is an error.
func Parse(data []byte) (*Blueprint, error) {
	var bp Blueprint
	raw, err := decodeFields(data, map[string]any{
		FieldID:           &bp.ID,
		FieldName:         &bp.Name,
		FieldDescription:  &bp.Description,
		FieldVersion:      &bp.Version,
		FieldStrategy:     &bp.Strategy,
		FieldCodeTemplate: &bp.CodeTemplate,
		FieldTestTemplate: &bp.TestTemplate,
		FieldValidation:   &bp.Validation,
		FieldRollback:     &bp.Rollback,
		FieldMetadata:     &bp.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if params, ok := raw[FieldParameters]; ok {
		bp.Parameters = decodeParameters(params)
	}

	bp.fields = make(map[string]bool, len(raw))
	for k := range raw {
		bp.fields[k] = true
	}
	return &bp, nil
}

// decodeParameters decodes a parameters object spec by spec. A spec that is
// not an object is kept as an empty ParameterSpec; a non-object value yields
// an empty map.
func decodeParameters(data json.RawMessage) map[string]ParameterSpec {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return map[string]ParameterSpec{}
	}
	params := make(map[string]ParameterSpec, len(raw))
	for name, value := range raw {
		var spec ParameterSpec
		if err := json.Unmarshal(value, &spec); err != nil {
			spec = ParameterSpec{}
		}
		params[name] = spec
	}
	return params
}

// decodeFields decodes the keys of a JSON object into their targets. A key
// whose value does not fit its target resets the target to its zero value.
// Returns the raw object, or an error when data is not an object.
func decodeFields(data []byte, targets map[string]any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	for key, target := range targets {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			reflect.ValueOf(target).Elem().SetZero()
		}
	}
	return raw, nil
}

// UnmarshalJSON decodes a parameter spec field by field.
func (p *ParameterSpec) UnmarshalJSON(data []byte) error {
	*p = ParameterSpec{}
	_, err := decodeFields(data, map[string]any{
		"type":        &p.Type,
		"required":    &p.Required,
		"default":     &p.Default,
		"pattern":     &p.Pattern,
		"description": &p.Description,
	})
	return err
}

// UnmarshalJSON decodes a code template field by field.
func (c *CodeTemplate) UnmarshalJSON(data []byte) error {
	*c = CodeTemplate{}
	_, err := decodeFields(data, map[string]any{
		"language":   &c.Language,
		"executable": &c.Executable,
		"testable":   &c.Testable,
		"content":    &c.Content,
	})
	return err
}

// UnmarshalJSON decodes metadata field by field.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	_, err := decodeFields(data, map[string]any{
		"estimatedTokens": &m.EstimatedTokens,
		"generationTime":  &m.GenerationTime,
		"qualityTarget":   &m.QualityTarget,
	})
	return err
}

// Load reads and parses a blueprint file.
func Load(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint: %w", err)
	}
	bp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return bp, nil
}

// Marshal encodes the blueprint as indented JSON.
func (b *Blueprint) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal blueprint: %w", err)
	}
	return append(data, '\n'), nil
}

// Has reports whether the blueprint declares a top-level field. For
// blueprints parsed from JSON this is key presence; for blueprints built in
// code it is a non-zero value.
func (b *Blueprint) Has(field string) bool {
	if b.fields != nil {
		return b.fields[field]
	}
	switch field {
	case FieldID:
		return b.ID != ""
	case FieldName:
		return b.Name != ""
	case FieldDescription:
		return b.Description != ""
	case FieldVersion:
		return b.Version != ""
	case FieldStrategy:
		return b.Strategy != ""
	case FieldParameters:
		return b.Parameters != nil
	case FieldCodeTemplate:
		return b.CodeTemplate != (CodeTemplate{})
	case FieldTestTemplate:
		return b.TestTemplate != nil
	case FieldValidation:
		return b.Validation != nil
	case FieldRollback:
		return b.Rollback != nil
	case FieldMetadata:
		return b.Metadata != nil
	default:
		return false
	}
}

// ParameterNames returns the declared parameter names in sorted order.
func (b *Blueprint) ParameterNames() []string {
	names := make([]string, 0, len(b.Parameters))
	for name := range b.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateID checks an identifier against IDPattern.
func ValidateID(id string) error {
	if !IDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidID, id, IDPattern.String())
	}
	return nil
}
