package render

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokVar
	tokIf
	tokElse
	tokEnd
)

type token struct {
	kind   tokenKind
	text   string
	name   string
	offset int
}

// tokenize splits src into literal text and template tags in a single pass.
// Tags that are neither markers nor identifiers (e.g. "{{ }}" in a Python
// f-string) are kept as literal text.
func tokenize(src string) ([]token, error) {
	var toks []token
	pos := 0
	textStart := 0

	flushText := func(end int) {
		if end > textStart {
			toks = append(toks, token{kind: tokText, text: src[textStart:end], offset: textStart})
		}
	}

	for pos < len(src) {
		open := strings.Index(src[pos:], "{{")
		if open < 0 {
			break
		}
		open += pos
		closeIdx := strings.Index(src[open+2:], "}}")
		if closeIdx < 0 {
			if at := unclosedMarker(src, open); at >= 0 {
				return nil, newSyntaxError(src, at, "unclosed tag")
			}
			break
		}
		end := open + 2 + closeIdx + 2
		raw := src[open:end]
		inner := strings.TrimSpace(src[open+2 : end-2])

		tok, ok, err := classify(src, open, raw, inner)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Literal braces. Resume one byte on so "{{{name}}}" still
			// yields the inner placeholder.
			pos = open + 1
			continue
		}
		flushText(open)
		toks = append(toks, tok)
		pos = end
		textStart = end
	}
	flushText(len(src))
	return toks, nil
}

// startsMarker reports whether s begins with a conditional marker keyword
// ("#if", "/if" or "else") ending at a space, a brace or the end of s.
func startsMarker(s string) bool {
	for _, kw := range []string{"#if", "/if", "else"} {
		if !strings.HasPrefix(s, kw) {
			continue
		}
		rest := s[len(kw):]
		if rest == "" || strings.ContainsAny(rest[:1], " \t\n}") {
			return true
		}
	}
	return false
}

// unclosedMarker returns the offset of the first "{{" at or after from that
// opens a conditional marker, or -1. Only called when no "}}" follows from.
func unclosedMarker(src string, from int) int {
	for from < len(src) {
		i := strings.Index(src[from:], "{{")
		if i < 0 {
			return -1
		}
		at := from + i
		if startsMarker(strings.TrimLeft(src[at+2:], " \t")) {
			return at
		}
		from = at + 1
	}
	return -1
}

// classify turns the contents of a {{...}} pair into a token. ok is false
// when the tag is not template syntax.
func classify(src string, offset int, raw, inner string) (token, bool, error) {
	switch {
	case inner == "else":
		return token{kind: tokElse, text: raw, offset: offset}, true, nil
	case inner == "/if":
		return token{kind: tokEnd, text: raw, offset: offset}, true, nil
	case strings.HasPrefix(inner, "#if"):
		rest := inner[len("#if"):]
		name := strings.TrimSpace(rest)
		if name == "" {
			return token{}, false, newSyntaxError(src, offset, "{{#if}} without a parameter name")
		}
		if rest == strings.TrimLeft(rest, " \t") || !identRe.MatchString(name) {
			return token{}, false, newSyntaxError(src, offset, fmt.Sprintf("invalid condition %q", name))
		}
		return token{kind: tokIf, text: raw, name: name, offset: offset}, true, nil
	case strings.HasPrefix(inner, "#") || strings.HasPrefix(inner, "/"):
		return token{}, false, newSyntaxError(src, offset, fmt.Sprintf("unknown block tag %q", raw))
	case raw == "{{"+inner+"}}" && identRe.MatchString(inner):
		return token{kind: tokVar, text: raw, name: inner, offset: offset}, true, nil
	default:
		return token{}, false, nil
	}
}

type parser struct {
	src  string
	toks []token
	pos  int
}

// parseBlock parses nodes until the enclosing block ends. depth is the
// number of currently open conditional blocks.
func (p *parser) parseBlock(depth int) ([]node, error) {
	var nodes []node
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		switch tok.kind {
		case tokText:
			nodes = append(nodes, node{kind: nodeText, text: tok.text})
			p.pos++
		case tokVar:
			nodes = append(nodes, node{kind: nodeVar, text: tok.text, name: tok.name})
			p.pos++
		case tokIf:
			p.pos++
			n, err := p.parseIf(tok, depth+1)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tokElse:
			if depth == 0 {
				return nil, newSyntaxError(p.src, tok.offset, "{{else}} outside of {{#if}}")
			}
			return nodes, nil
		case tokEnd:
			if depth == 0 {
				return nil, newSyntaxError(p.src, tok.offset, "{{/if}} without matching {{#if}}")
			}
			return nodes, nil
		}
	}
	return nodes, nil
}

// parseIf parses the body of a conditional whose opening tag was open.
func (p *parser) parseIf(open token, depth int) (node, error) {
	n := node{kind: nodeIf, text: open.text, name: open.name}

	then, err := p.parseBlock(depth)
	if err != nil {
		return node{}, err
	}
	n.then = then

	if p.pos >= len(p.toks) {
		return node{}, newSyntaxError(p.src, open.offset, fmt.Sprintf("unterminated {{#if %s}}", open.name))
	}

	if p.toks[p.pos].kind == tokElse {
		elseTok := p.toks[p.pos]
		p.pos++
		els, err := p.parseBlock(depth)
		if err != nil {
			return node{}, err
		}
		if p.pos >= len(p.toks) {
			return node{}, newSyntaxError(p.src, open.offset, fmt.Sprintf("unterminated {{#if %s}}", open.name))
		}
		if p.toks[p.pos].kind == tokElse {
			return node{}, newSyntaxError(p.src, elseTok.offset, fmt.Sprintf("duplicate {{else}} in {{#if %s}}", open.name))
		}
		n.els = els
	}

	// Current token is {{/if}}.
	p.pos++
	return n, nil
}

func newSyntaxError(src string, offset int, msg string) *SyntaxError {
	return &SyntaxError{
		Offset: offset,
		Line:   strings.Count(src[:offset], "\n") + 1,
		Msg:    msg,
	}
}
