// Copyright © 2024 The ELPS authors

// Package astutil provides shared tree walking utilities for pyast nodes.
//
// These helpers are used by both the lint and analysis packages for
// traversing parsed Python modules.
package astutil

import "github.com/luthersystems/pyscan/pyast"

// Walk calls fn for every node in the tree, depth-first in source order
// (pre-order). parent is nil for the root.
func Walk(root *pyast.Node, fn func(node *pyast.Node, parent *pyast.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(node *pyast.Node, parent *pyast.Node, depth int, fn func(*pyast.Node, *pyast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Children {
		walkNode(child, node, depth+1, fn)
	}
}

// DottedName renders a decorator or base class expression. A Name yields
// its identifier and an Attribute yields the rendering of its object, a dot
// and the attribute. Anything else yields its verbatim source text.
func DottedName(n *pyast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case pyast.KindName:
		return n.Name
	case pyast.KindAttribute:
		return DottedName(n.Left) + "." + n.Name
	}
	return n.Text
}

// DottedNames maps DottedName over nodes. The result is never nil.
func DottedNames(nodes []*pyast.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, DottedName(n))
	}
	return names
}

// HasDocstring reports whether the first statement of body is an
// expression statement holding a plain string literal.
func HasDocstring(body []*pyast.Node) bool {
	if len(body) == 0 {
		return false
	}
	first := body[0]
	return first.Kind == pyast.KindExpr && first.Left.IsStringLiteral()
}

// PositionalParams returns the names of the regular positional parameters
// of a function, in declaration order. Positional-only parameters declared
// before a "/" are not included.
func PositionalParams(fn *pyast.Node) []string {
	names := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		if p.Kind == pyast.ParamPositional {
			names = append(names, p.Name)
		}
	}
	return names
}

// Defaults returns the default value expressions of a function's
// positional and keyword-only parameters, in declaration order.
func Defaults(fn *pyast.Node) []*pyast.Node {
	var defaults []*pyast.Node
	for _, p := range fn.Params {
		if p.Default != nil {
			defaults = append(defaults, p.Default)
		}
	}
	return defaults
}
