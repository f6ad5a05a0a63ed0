// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/pyscan/astutil"
	"github.com/luthersystems/pyscan/pyast"
)

// Complexity returns the cyclomatic complexity of a function definition.
//
// The score starts at 1 and walks the whole subtree of fn, nested
// definitions included. Each if/elif, while, for, async for, except
// handler and with statement adds one. A boolean operation with N operands
// adds N-1. Conditional expressions, comprehension clauses and async with
// statements do not count.
func Complexity(fn *pyast.Node) int {
	score := 1
	astutil.Walk(fn, func(node *pyast.Node, _ *pyast.Node, _ int) {
		switch node.Kind {
		case pyast.KindIf, pyast.KindWhile, pyast.KindFor, pyast.KindAsyncFor,
			pyast.KindExceptHandler, pyast.KindWith:
			score++
		case pyast.KindBoolOp:
			if len(node.Values) > 1 {
				score += len(node.Values) - 1
			}
		}
	})
	return score
}
