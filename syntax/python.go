// Package syntax checks generated source text for syntax errors using
// tree-sitter grammars.
package syntax

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Problem kinds.
const (
	KindError   = "error"
	KindMissing = "missing"
)

// Problem is one syntax defect. Line and Column are 1-based.
type Problem struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Kind   string `json:"kind"`
	Text   string `json:"text,omitempty"`
}

func (p Problem) String() string {
	if p.Kind == KindMissing {
		return fmt.Sprintf("%d:%d: missing %s", p.Line, p.Column, p.Text)
	}
	if p.Text == "" {
		return fmt.Sprintf("%d:%d: syntax error", p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d: syntax error near %q", p.Line, p.Column, p.Text)
}

// PythonChecker parses Python source. Safe for concurrent use.
type PythonChecker struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewPythonChecker creates a Python syntax checker.
func NewPythonChecker() *PythonChecker {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonChecker{parser: p}
}

// Check parses src and returns every ERROR and MISSING node in document
// order. An empty result means the source parsed cleanly.
func (c *PythonChecker) Check(ctx context.Context, src []byte) ([]Problem, error) {
	c.mu.Lock()
	tree, err := c.parser.ParseCtx(ctx, nil, src)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse python: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var problems []Problem
	collect(root, src, &problems)
	return problems, nil
}

// CheckPython is a convenience wrapper around a fresh PythonChecker.
func CheckPython(ctx context.Context, src string) ([]Problem, error) {
	return NewPythonChecker().Check(ctx, []byte(src))
}

func collect(node *sitter.Node, src []byte, out *[]Problem) {
	switch {
	case node.IsMissing():
		*out = append(*out, newProblem(node, KindMissing, node.Type()))
		return
	case node.IsError():
		*out = append(*out, newProblem(node, KindError, snippet(node.Content(src))))
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		collect(child, src, out)
	}
}

func newProblem(node *sitter.Node, kind, text string) Problem {
	start := node.StartPoint()
	return Problem{
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
		Kind:   kind,
		Text:   text,
	}
}

const snippetRunes = 40

// snippet returns the first line of s, cut to snippetRunes runes.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if utf8.RuneCountInString(s) > snippetRunes {
		s = string([]rune(s)[:snippetRunes])
	}
	return s
}
