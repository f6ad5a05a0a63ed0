// Copyright © 2024 The ELPS authors

package astutil

import (
	"testing"

	"github.com/luthersystems/pyscan/pyast"
	"github.com/stretchr/testify/assert"
)

func name(id string) *pyast.Node {
	return &pyast.Node{Kind: pyast.KindName, Name: id, Text: id}
}

func attr(obj *pyast.Node, id string) *pyast.Node {
	n := &pyast.Node{Kind: pyast.KindAttribute, Name: id, Left: obj, Text: obj.Text + "." + id}
	n.Append(obj)
	return n
}

func TestWalk_PreOrder(t *testing.T) {
	a, b, c := name("a"), name("b"), name("c")
	inner := &pyast.Node{Kind: pyast.KindTuple}
	inner.Append(b, c)
	root := &pyast.Node{Kind: pyast.KindModule}
	root.Append(a, inner)

	var order []string
	var depths []int
	Walk(root, func(n, parent *pyast.Node, depth int) {
		order = append(order, n.String())
		depths = append(depths, depth)
		if n == root {
			assert.Nil(t, parent)
		}
	})
	assert.Equal(t, []string{"Module", "Name(a)", "Tuple", "Name(b)", "Name(c)"}, order)
	assert.Equal(t, []int{0, 1, 1, 2, 2}, depths)
}

func TestWalk_Nil(t *testing.T) {
	called := false
	Walk(nil, func(*pyast.Node, *pyast.Node, int) { called = true })
	assert.False(t, called)
}

func TestDottedName(t *testing.T) {
	assert.Equal(t, "x", DottedName(name("x")))
	assert.Equal(t, "a.b.c", DottedName(attr(attr(name("a"), "b"), "c")))

	call := &pyast.Node{Kind: pyast.KindCall, Text: "app.route('/')"}
	assert.Equal(t, "app.route('/')", DottedName(call))

	// The object of an attribute chain can be arbitrary.
	sub := &pyast.Node{Kind: pyast.KindSubscript, Text: "Generic[T]"}
	assert.Equal(t, "Generic[T].x", DottedName(attr(sub, "x")))
	assert.Equal(t, "", DottedName(nil))
}

func TestDottedNames_Empty(t *testing.T) {
	names := DottedNames(nil)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestHasDocstring(t *testing.T) {
	doc := &pyast.Node{Kind: pyast.KindExpr, Left: &pyast.Node{Kind: pyast.KindConstant, Literal: pyast.LitString}}
	fstr := &pyast.Node{Kind: pyast.KindExpr, Left: &pyast.Node{Kind: pyast.KindJoinedStr}}
	num := &pyast.Node{Kind: pyast.KindExpr, Left: &pyast.Node{Kind: pyast.KindConstant, Literal: pyast.LitNumber}}
	pass := &pyast.Node{Kind: pyast.KindPass}

	assert.True(t, HasDocstring([]*pyast.Node{doc, pass}))
	assert.False(t, HasDocstring([]*pyast.Node{pass, doc}))
	assert.False(t, HasDocstring([]*pyast.Node{fstr}))
	assert.False(t, HasDocstring([]*pyast.Node{num}))
	assert.False(t, HasDocstring(nil))
}

func TestPositionalParams(t *testing.T) {
	fn := &pyast.Node{Kind: pyast.KindFunctionDef, Params: []*pyast.Param{
		{Name: "a", Kind: pyast.ParamPositionalOnly},
		{Name: "self", Kind: pyast.ParamPositional},
		{Name: "b", Kind: pyast.ParamPositional, Default: &pyast.Node{Kind: pyast.KindList}},
		{Name: "args", Kind: pyast.ParamVarArgs},
		{Name: "c", Kind: pyast.ParamKeywordOnly, Default: &pyast.Node{Kind: pyast.KindDict}},
		{Name: "kw", Kind: pyast.ParamKwArgs},
	}}
	assert.Equal(t, []string{"self", "b"}, PositionalParams(fn))
	defaults := Defaults(fn)
	if assert.Len(t, defaults, 2) {
		assert.Equal(t, pyast.KindList, defaults[0].Kind)
		assert.Equal(t, pyast.KindDict, defaults[1].Kind)
	}
}
