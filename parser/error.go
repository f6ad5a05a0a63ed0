// Copyright © 2024 The ELPS authors

package parser

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// SyntaxError reports source text that does not parse. Line and Col are
// 1-based; either may be 0 when the position is unknown.
type SyntaxError struct {
	Msg      string
	Filename string
	Line     int
	Col      int
}

func (err *SyntaxError) Error() string {
	if err.Line == 0 {
		return err.Msg
	}
	return fmt.Sprintf("%s (%s, line %d)", err.Msg, err.Filename, err.Line)
}

// syntaxErrorAt describes the parse failure under root. A bracket left
// open anywhere in the source takes precedence and is reported where it
// opens. Otherwise the first ERROR or MISSING node in source order is
// reported.
func syntaxErrorAt(root *sitter.Node, filename string) *SyntaxError {
	if err := unbalancedBracket(root, filename); err != nil {
		return err
	}
	bad := firstErrorNode(root, 0)
	if bad == nil {
		return &SyntaxError{Msg: "invalid syntax", Filename: filename}
	}
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("expected '%s'", bad.Type())
	}
	pt := bad.StartPoint()
	return &SyntaxError{
		Msg:      msg,
		Filename: filename,
		Line:     int(pt.Row) + 1,
		Col:      int(pt.Column) + 1,
	}
}

const maxErrorDepth = 1000

func firstErrorNode(n *sitter.Node, depth int) *sitter.Node {
	if n == nil || depth > maxErrorDepth {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		// Prefer a more precise error nested inside an ERROR node.
		for i := 0; i < int(n.ChildCount()); i++ {
			if inner := firstErrorNode(n.Child(i), depth+1); inner != nil && inner.IsMissing() {
				return inner
			}
		}
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i), depth+1); bad != nil {
			return bad
		}
	}
	return nil
}

var closerOf = map[string]string{"(": ")", "[": "]", "{": "}"}

// unbalancedBracket matches the bracket tokens under root. Zero-width
// MISSING tokens inserted by error recovery do not close anything. It
// returns nil when every bracket is matched.
func unbalancedBracket(root *sitter.Node, filename string) *SyntaxError {
	var open []*sitter.Node
	var stray *sitter.Node
	var visit func(n *sitter.Node, depth int)
	visit = func(n *sitter.Node, depth int) {
		if stray != nil || depth > maxErrorDepth {
			return
		}
		if n.ChildCount() == 0 {
			if n.IsMissing() || n.IsNamed() {
				return
			}
			tok := n.Type()
			switch tok {
			case "(", "[", "{":
				open = append(open, n)
			case ")", "]", "}":
				if len(open) == 0 || closerOf[open[len(open)-1].Type()] != tok {
					stray = n
					return
				}
				open = open[:len(open)-1]
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i), depth+1)
		}
	}
	visit(root, 0)

	var at *sitter.Node
	var msg string
	switch {
	case stray != nil && len(open) > 0:
		at = stray
		msg = fmt.Sprintf("closing parenthesis '%s' does not match opening parenthesis '%s'", stray.Type(), open[len(open)-1].Type())
	case stray != nil:
		at = stray
		msg = fmt.Sprintf("unmatched '%s'", stray.Type())
	case len(open) > 0:
		at = open[len(open)-1]
		msg = fmt.Sprintf("'%s' was never closed", at.Type())
	default:
		return nil
	}
	pt := at.StartPoint()
	return &SyntaxError{
		Msg:      msg,
		Filename: filename,
		Line:     int(pt.Row) + 1,
		Col:      int(pt.Column) + 1,
	}
}
