// Copyright © 2024 The ELPS authors

// Package pyast defines the source tree produced by the parser and consumed
// by the analysis and lint packages.
//
// A tree is made of *Node values tagged with a Kind. Every node keeps its
// sub-nodes in source order in Children, which is what the walkers traverse.
// Kind-specific slots (Body, Params, Left, Values, ...) point at nodes that
// also appear in Children, so consumers can either walk generically or look
// at the shape of a particular construct.
package pyast

import "strings"

// Kind identifies the syntactic construct a Node represents.
type Kind int

const (
	KindInvalid Kind = iota
	KindModule

	// statements
	KindFunctionDef
	KindAsyncFunctionDef
	KindClassDef
	KindImport
	KindImportFrom
	KindIf
	KindWhile
	KindFor
	KindAsyncFor
	KindWith
	KindAsyncWith
	KindTry
	KindExceptHandler
	KindExpr // expression statement
	KindAssign
	KindAugAssign
	KindAnnAssign
	KindReturn
	KindDelete
	KindRaise
	KindAssert
	KindGlobal
	KindNonlocal
	KindPass
	KindBreak
	KindContinue
	KindMatch
	KindMatchCase

	// expressions
	KindName
	KindAttribute
	KindConstant
	KindBoolOp
	KindBinOp
	KindUnaryOp
	KindCompare
	KindCall
	KindKeyword
	KindList
	KindTuple
	KindSet
	KindDict
	KindSubscript
	KindStarred
	KindLambda
	KindIfExp
	KindNamedExpr
	KindComprehension
	KindAwait
	KindYield
	KindJoinedStr
	KindParam

	// KindOther covers constructs the analyzer has no dedicated handling
	// for. Their children are still lowered and walked.
	KindOther
)

var kindNames = [...]string{
	KindInvalid:          "Invalid",
	KindModule:           "Module",
	KindFunctionDef:      "FunctionDef",
	KindAsyncFunctionDef: "AsyncFunctionDef",
	KindClassDef:         "ClassDef",
	KindImport:           "Import",
	KindImportFrom:       "ImportFrom",
	KindIf:               "If",
	KindWhile:            "While",
	KindFor:              "For",
	KindAsyncFor:         "AsyncFor",
	KindWith:             "With",
	KindAsyncWith:        "AsyncWith",
	KindTry:              "Try",
	KindExceptHandler:    "ExceptHandler",
	KindExpr:             "Expr",
	KindAssign:           "Assign",
	KindAugAssign:        "AugAssign",
	KindAnnAssign:        "AnnAssign",
	KindReturn:           "Return",
	KindDelete:           "Delete",
	KindRaise:            "Raise",
	KindAssert:           "Assert",
	KindGlobal:           "Global",
	KindNonlocal:         "Nonlocal",
	KindPass:             "Pass",
	KindBreak:            "Break",
	KindContinue:         "Continue",
	KindMatch:            "Match",
	KindMatchCase:        "MatchCase",
	KindName:             "Name",
	KindAttribute:        "Attribute",
	KindConstant:         "Constant",
	KindBoolOp:           "BoolOp",
	KindBinOp:            "BinOp",
	KindUnaryOp:          "UnaryOp",
	KindCompare:          "Compare",
	KindCall:             "Call",
	KindKeyword:          "Keyword",
	KindList:             "List",
	KindTuple:            "Tuple",
	KindSet:              "Set",
	KindDict:             "Dict",
	KindSubscript:        "Subscript",
	KindStarred:          "Starred",
	KindLambda:           "Lambda",
	KindIfExp:            "IfExp",
	KindNamedExpr:        "NamedExpr",
	KindComprehension:    "Comprehension",
	KindAwait:            "Await",
	KindYield:            "Yield",
	KindJoinedStr:        "JoinedStr",
	KindParam:            "Param",
	KindOther:            "Other",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// IsFunction reports whether k defines a function (sync or async).
func (k Kind) IsFunction() bool {
	return k == KindFunctionDef || k == KindAsyncFunctionDef
}

// Context is the expression context of a Name.
type Context int

const (
	CtxLoad Context = iota
	CtxStore
	CtxDel
)

func (c Context) String() string {
	switch c {
	case CtxLoad:
		return "load"
	case CtxStore:
		return "store"
	case CtxDel:
		return "del"
	default:
		return "unknown"
	}
}

// Literal classifies the value of a Constant node.
type Literal int

const (
	LitNone Literal = iota
	LitTrue
	LitFalse
	LitString
	LitBytes
	LitNumber
	LitEllipsis
)

// IsSingleton reports whether the literal is None, True or False.
func (l Literal) IsSingleton() bool {
	return l == LitNone || l == LitTrue || l == LitFalse
}

func (l Literal) String() string {
	switch l {
	case LitNone:
		return "None"
	case LitTrue:
		return "True"
	case LitFalse:
		return "False"
	case LitString:
		return "str"
	case LitBytes:
		return "bytes"
	case LitNumber:
		return "number"
	case LitEllipsis:
		return "Ellipsis"
	default:
		return "unknown"
	}
}

// ParamKind distinguishes how a parameter can be passed.
type ParamKind int

const (
	ParamPositionalOnly ParamKind = iota
	ParamPositional               // positional-or-keyword
	ParamVarArgs                  // *args
	ParamKeywordOnly
	ParamKwArgs // **kwargs
)

// Param is a single function parameter. Default is nil when the parameter
// has no default value.
type Param struct {
	Name    string
	Kind    ParamKind
	Default *Node
	Node    *Node // the KindParam node holding annotation and default
}

// Alias is one imported name of an import statement.
type Alias struct {
	Name   string
	AsName *string
}

// Node is one syntactic unit of the source tree.
type Node struct {
	Kind Kind

	// Line and Col are 1-based. EndLine falls back to Line when the
	// parser has no end information for the construct.
	Line    int
	Col     int
	EndLine int

	// Text is the verbatim source of the node.
	Text string

	// Children holds every sub-node in source order.
	Children []*Node

	// Name is the identifier of a Name, the name of a FunctionDef or
	// ClassDef, the attribute of an Attribute, or the bound name of an
	// ExceptHandler.
	Name string
	Ctx  Context

	// Op is the operator of a BinOp, BoolOp, UnaryOp or AugAssign.
	// Ops holds the operators of a Compare in order.
	Op  string
	Ops []string

	Literal Literal

	Decorators []*Node
	Params     []*Param
	Bases      []*Node
	Body       []*Node

	// Left is the left operand of a BinOp or Compare, the object of an
	// Attribute, the value of an Expr statement and the type of an
	// ExceptHandler.
	Left *Node

	// Values holds BoolOp operands and Compare comparators.
	Values []*Node

	Aliases []Alias
	Module  *string
	Level   int
}

// Append adds children to n in source order.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
}

// End returns the ending line of n, falling back to the starting line.
func (n *Node) End() int {
	if n.EndLine < n.Line {
		return n.Line
	}
	return n.EndLine
}

// IsStringLiteral reports whether n is a plain (non-bytes, non-f) string
// constant.
func (n *Node) IsStringLiteral() bool {
	return n != nil && n.Kind == KindConstant && n.Literal == LitString
}

// String returns a short debugging representation of n.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(n.Kind.String())
	if n.Name != "" {
		b.WriteByte('(')
		b.WriteString(n.Name)
		b.WriteByte(')')
	}
	return b.String()
}
