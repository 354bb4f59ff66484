package blueprint

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ParamErrorKind distinguishes parameter binding failures.
type ParamErrorKind string

const (
	// MissingParameter means a required parameter has no binding.
	MissingParameter ParamErrorKind = "MissingParameter"
	// TypeMismatch means a bound value does not have the declared primitive type.
	TypeMismatch ParamErrorKind = "TypeMismatch"
	// PatternMismatch means a textual value does not match the declared pattern.
	PatternMismatch ParamErrorKind = "PatternMismatch"
)

// ParamError reports a parameter binding that cannot be rendered.
type ParamError struct {
	Kind    ParamErrorKind
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Param, e.Message)
}

// IsMissingParameter reports whether err is a MissingParameter binding error.
func IsMissingParameter(err error) bool {
	return paramErrorKind(err) == MissingParameter
}

// IsTypeMismatch reports whether err is a TypeMismatch binding error.
func IsTypeMismatch(err error) bool {
	return paramErrorKind(err) == TypeMismatch
}

// IsPatternMismatch reports whether err is a PatternMismatch binding error.
func IsPatternMismatch(err error) bool {
	return paramErrorKind(err) == PatternMismatch
}

func paramErrorKind(err error) ParamErrorKind {
	var pe *ParamError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// ValidateBindings checks bindings against the declared parameter specs and
// returns the first violation found, visiting parameters in name order.
//
// Only string and boolean types are checked. Patterns are matched from the
// start of the value; a pattern that should cover the whole value must end
// with $ itself. Bindings without a spec are ignored.
func ValidateBindings(specs map[string]ParameterSpec, bindings map[string]any) error {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := specs[name]
		value, bound := bindings[name]
		if !bound {
			if spec.Required {
				return &ParamError{Kind: MissingParameter, Param: name, Message: "required parameter missing"}
			}
			continue
		}

		switch spec.Type {
		case TypeString:
			if _, ok := value.(string); !ok {
				return &ParamError{Kind: TypeMismatch, Param: name, Message: fmt.Sprintf("must be string, got %T", value)}
			}
		case TypeBoolean:
			if _, ok := value.(bool); !ok {
				return &ParamError{Kind: TypeMismatch, Param: name, Message: fmt.Sprintf("must be boolean, got %T", value)}
			}
		}

		if spec.Pattern == "" {
			continue
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		re, err := compilePrefix(spec.Pattern)
		if err != nil {
			return &ParamError{Kind: PatternMismatch, Param: name, Message: fmt.Sprintf("invalid pattern %q: %v", spec.Pattern, err)}
		}
		if !re.MatchString(text) {
			return &ParamError{Kind: PatternMismatch, Param: name, Message: fmt.Sprintf("value %q does not match pattern %q", text, spec.Pattern)}
		}
	}
	return nil
}

// compilePrefix anchors pattern at the start of the input only.
func compilePrefix(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)`)
}
