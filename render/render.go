// Package render expands blueprint code templates.
//
// Templates use two constructs:
//
//	{{name}}                               placeholder, replaced by the bound value
//	{{#if name}}...{{else}}...{{/if}}      conditional block, else branch optional
//
// Conditional blocks may be nested. Each {{else}} and {{/if}} belongs to the
// innermost open block. A placeholder without a binding is emitted verbatim.
package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedTemplate is returned when conditional markers are unbalanced or
// otherwise unparseable. Use errors.Is to match it.
var ErrMalformedTemplate = errors.New("malformed template")

// identRe matches parameter names usable in placeholders and conditions.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SyntaxError describes where template parsing failed.
type SyntaxError struct {
	Offset int
	Line   int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed template: line %d: %s", e.Line, e.Msg)
}

// Unwrap lets errors.Is(err, ErrMalformedTemplate) succeed.
func (e *SyntaxError) Unwrap() error {
	return ErrMalformedTemplate
}

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeVar
	nodeIf
)

// node is one element of a parsed template.
type node struct {
	kind nodeKind
	text string // literal text, or the raw tag for placeholders
	name string
	then []node
	els  []node
}

// Template is a parsed template that can be executed many times.
type Template struct {
	source string
	nodes  []node
}

// Parse tokenizes and parses src. It fails fast on unbalanced conditional markers.
func Parse(src string) (*Template, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	nodes, err := p.parseBlock(0)
	if err != nil {
		return nil, err
	}
	return &Template{source: src, nodes: nodes}, nil
}

// Render parses template and executes it against bindings. Conditional blocks
// are resolved before placeholders are substituted, so placeholders inside an
// unselected branch never reach the output. On error no output is produced.
func Render(template string, bindings map[string]any) (string, error) {
	t, err := Parse(template)
	if err != nil {
		return "", err
	}
	return t.Execute(bindings), nil
}

// Execute renders the parsed template against bindings.
func (t *Template) Execute(bindings map[string]any) string {
	var sb strings.Builder
	sb.Grow(len(t.source))
	execute(&sb, t.nodes, bindings)
	return sb.String()
}

// Placeholders returns the names referenced by {{name}} tags, in order of
// first appearance, including those inside conditional branches.
func (t *Template) Placeholders() []string {
	var out []string
	seen := make(map[string]bool)
	walk(t.nodes, func(n node) {
		if n.kind == nodeVar && !seen[n.name] {
			seen[n.name] = true
			out = append(out, n.name)
		}
	})
	return out
}

// Conditions returns the names tested by {{#if name}} tags, in order of first
// appearance.
func (t *Template) Conditions() []string {
	var out []string
	seen := make(map[string]bool)
	walk(t.nodes, func(n node) {
		if n.kind == nodeIf && !seen[n.name] {
			seen[n.name] = true
			out = append(out, n.name)
		}
	})
	return out
}

func walk(nodes []node, fn func(node)) {
	for _, n := range nodes {
		fn(n)
		if n.kind == nodeIf {
			walk(n.then, fn)
			walk(n.els, fn)
		}
	}
}

func execute(sb *strings.Builder, nodes []node, bindings map[string]any) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			sb.WriteString(n.text)
		case nodeVar:
			v, ok := bindings[n.name]
			if !ok {
				sb.WriteString(n.text)
				continue
			}
			sb.WriteString(Stringify(v))
		case nodeIf:
			if Truthy(bindings[n.name]) {
				execute(sb, n.then, bindings)
			} else {
				execute(sb, n.els, bindings)
			}
		}
	}
}

// Stringify returns the textual form of a bound value.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; print integral values without a fraction.
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(x)
	}
}

// Truthy reports whether a bound value selects the first branch of a
// conditional. Missing and nil values are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && !strings.EqualFold(x, "false")
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
