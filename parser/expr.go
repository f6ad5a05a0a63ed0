// Copyright © 2024 The ELPS authors

package parser

import (
	"strings"

	"github.com/luthersystems/pyscan/pyast"
	sitter "github.com/smacker/go-tree-sitter"
)

// expr lowers an expression in load context.
func (l *lowerer) expr(n *sitter.Node) *pyast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		name := l.newNode(pyast.KindName, n)
		name.Name = l.content(n)
		return name
	case "attribute":
		return l.attribute(n)
	case "call":
		return l.call(n)
	case "keyword_argument":
		kw := l.newNode(pyast.KindKeyword, n)
		if name := n.ChildByFieldName("name"); name != nil {
			kw.Name = l.content(name)
		}
		kw.Append(l.expr(n.ChildByFieldName("value")))
		return kw
	case "string":
		return l.str(n)
	case "concatenated_string":
		return l.concatenated(n)
	case "integer", "float":
		return l.constant(n, pyast.LitNumber)
	case "true":
		return l.constant(n, pyast.LitTrue)
	case "false":
		return l.constant(n, pyast.LitFalse)
	case "none":
		return l.constant(n, pyast.LitNone)
	case "ellipsis":
		return l.constant(n, pyast.LitEllipsis)
	case "list":
		return l.collection(pyast.KindList, n)
	case "tuple", "expression_list", "pattern_list":
		return l.collection(pyast.KindTuple, n)
	case "set":
		return l.collection(pyast.KindSet, n)
	case "dictionary":
		d := l.newNode(pyast.KindDict, n)
		for _, c := range named(n) {
			if c.Type() == "pair" {
				d.Append(l.expr(c.ChildByFieldName("key")), l.expr(c.ChildByFieldName("value")))
				continue
			}
			d.Append(l.expr(c))
		}
		return d
	case "parenthesized_expression":
		if inner := named(n); len(inner) == 1 {
			return l.expr(inner[0])
		}
		return l.generic(n)
	case "boolean_operator":
		return l.boolOp(n)
	case "not_operator":
		u := l.newNode(pyast.KindUnaryOp, n)
		u.Op = "not"
		u.Append(l.expr(n.ChildByFieldName("argument")))
		return u
	case "unary_operator":
		u := l.newNode(pyast.KindUnaryOp, n)
		if op := n.ChildByFieldName("operator"); op != nil {
			u.Op = op.Type()
		}
		u.Append(l.expr(n.ChildByFieldName("argument")))
		return u
	case "binary_operator":
		b := l.newNode(pyast.KindBinOp, n)
		if op := n.ChildByFieldName("operator"); op != nil {
			b.Op = op.Type()
		}
		b.Left = l.expr(n.ChildByFieldName("left"))
		b.Append(b.Left, l.expr(n.ChildByFieldName("right")))
		return b
	case "comparison_operator":
		return l.compare(n)
	case "conditional_expression":
		return l.collection(pyast.KindIfExp, n)
	case "named_expression":
		ne := l.newNode(pyast.KindNamedExpr, n)
		if name := n.ChildByFieldName("name"); name != nil {
			ne.Append(l.target(name, pyast.CtxStore))
		}
		ne.Append(l.expr(n.ChildByFieldName("value")))
		return ne
	case "lambda":
		lam := l.newNode(pyast.KindLambda, n)
		if params := n.ChildByFieldName("parameters"); params != nil {
			l.params(params, lam)
		}
		lam.Append(l.expr(n.ChildByFieldName("body")))
		return lam
	case "await":
		return l.collection(pyast.KindAwait, n)
	case "yield":
		return l.collection(pyast.KindYield, n)
	case "subscript":
		return l.collection(pyast.KindSubscript, n)
	case "list_splat", "dictionary_splat":
		return l.collection(pyast.KindStarred, n)
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		return l.comprehension(n)
	case "assignment":
		return l.assignment(n, nil)
	case "augmented_assignment":
		return l.augAssignment(n, nil)
	}
	return l.generic(n)
}

// generic lowers an unknown construct as KindOther with loaded children.
func (l *lowerer) generic(n *sitter.Node) *pyast.Node {
	return l.collection(pyast.KindOther, n)
}

func (l *lowerer) collection(kind pyast.Kind, n *sitter.Node) *pyast.Node {
	c := l.newNode(kind, n)
	for _, child := range named(n) {
		c.Append(l.expr(child))
	}
	return c
}

func (l *lowerer) constant(n *sitter.Node, lit pyast.Literal) *pyast.Node {
	c := l.newNode(pyast.KindConstant, n)
	c.Literal = lit
	return c
}

func (l *lowerer) attribute(n *sitter.Node) *pyast.Node {
	a := l.newNode(pyast.KindAttribute, n)
	a.Left = l.expr(n.ChildByFieldName("object"))
	a.Append(a.Left)
	if attr := n.ChildByFieldName("attribute"); attr != nil {
		a.Name = l.content(attr)
	}
	return a
}

func (l *lowerer) call(n *sitter.Node) *pyast.Node {
	c := l.newNode(pyast.KindCall, n)
	c.Left = l.expr(n.ChildByFieldName("function"))
	c.Append(c.Left)
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return c
	}
	if args.Type() == "generator_expression" {
		c.Append(l.expr(args))
		return c
	}
	for _, a := range named(args) {
		c.Append(l.expr(a))
	}
	return c
}

// stringPrefix returns the lowercased prefix letters of a string literal.
func stringPrefix(text string) string {
	i := strings.IndexAny(text, `'"`)
	if i < 0 {
		return ""
	}
	return strings.ToLower(text[:i])
}

func (l *lowerer) str(n *sitter.Node) *pyast.Node {
	prefix := stringPrefix(l.content(n))
	switch {
	case strings.Contains(prefix, "f"):
		js := l.newNode(pyast.KindJoinedStr, n)
		l.interpolations(n, js)
		return js
	case strings.Contains(prefix, "b"):
		return l.constant(n, pyast.LitBytes)
	}
	return l.constant(n, pyast.LitString)
}

// interpolations appends the expressions embedded in an f-string.
func (l *lowerer) interpolations(n *sitter.Node, out *pyast.Node) {
	for _, c := range named(n) {
		switch c.Type() {
		case "interpolation":
			for _, part := range named(c) {
				switch part.Type() {
				case "type_conversion":
				case "format_specifier":
					l.interpolations(part, out)
				default:
					out.Append(l.expr(part))
				}
			}
		case "string_content", "format_specifier":
			l.interpolations(c, out)
		}
	}
}

func (l *lowerer) concatenated(n *sitter.Node) *pyast.Node {
	parts := named(n)
	var lowered []*pyast.Node
	joined, bytesOnly := false, len(parts) > 0
	for _, p := range parts {
		s := l.expr(p)
		lowered = append(lowered, s)
		if s.Kind == pyast.KindJoinedStr {
			joined = true
		}
		if s.Kind != pyast.KindConstant || s.Literal != pyast.LitBytes {
			bytesOnly = false
		}
	}
	if joined {
		js := l.newNode(pyast.KindJoinedStr, n)
		for _, s := range lowered {
			js.Append(s.Children...)
		}
		return js
	}
	if bytesOnly {
		return l.constant(n, pyast.LitBytes)
	}
	return l.constant(n, pyast.LitString)
}

// boolOp flattens left-nested chains of the same operator into one node.
// Parenthesized operands are kept as separate nodes.
func (l *lowerer) boolOp(n *sitter.Node) *pyast.Node {
	b := l.newNode(pyast.KindBoolOp, n)
	b.Op = boolOperator(n)
	var operands []*sitter.Node
	cur := n
	for {
		left := cur.ChildByFieldName("left")
		right := cur.ChildByFieldName("right")
		if right != nil {
			operands = append(operands, right)
		}
		if left != nil && left.Type() == "boolean_operator" && boolOperator(left) == b.Op {
			cur = left
			continue
		}
		if left != nil {
			operands = append(operands, left)
		}
		break
	}
	for i := len(operands) - 1; i >= 0; i-- {
		v := l.expr(operands[i])
		b.Values = append(b.Values, v)
		b.Append(v)
	}
	return b
}

func boolOperator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && (c.Type() == "and" || c.Type() == "or") {
			return c.Type()
		}
	}
	return ""
}

// compare lowers a comparison chain. Multi-word operators such as
// "not in" and "is not" are joined with a single space.
func (l *lowerer) compare(n *sitter.Node) *pyast.Node {
	c := l.newNode(pyast.KindCompare, n)
	var pending []string
	first := true
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || isTrivia(child) {
			continue
		}
		if !child.IsNamed() {
			pending = append(pending, strings.Fields(l.content(child))...)
			continue
		}
		operand := l.expr(child)
		if first {
			c.Left = operand
			first = false
		} else {
			c.Ops = append(c.Ops, strings.Join(pending, " "))
			c.Values = append(c.Values, operand)
		}
		pending = pending[:0]
		c.Append(operand)
	}
	return c
}

// comprehension lowers the element first, then each for and if clause in
// source order.
func (l *lowerer) comprehension(n *sitter.Node) *pyast.Node {
	comp := l.newNode(pyast.KindOther, n)
	for _, c := range named(n) {
		switch c.Type() {
		case "for_in_clause":
			gen := l.newNode(pyast.KindComprehension, c)
			if left := c.ChildByFieldName("left"); left != nil {
				gen.Append(l.target(left, pyast.CtxStore))
				for _, right := range named(c) {
					if !sameNode(right, left) {
						gen.Append(l.expr(right))
					}
				}
			}
			comp.Append(gen)
		case "if_clause":
			for _, cond := range named(c) {
				comp.Append(l.expr(cond))
			}
		case "pair":
			comp.Append(l.expr(c.ChildByFieldName("key")), l.expr(c.ChildByFieldName("value")))
		default:
			comp.Append(l.expr(c))
		}
	}
	return comp
}
