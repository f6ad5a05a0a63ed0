// Copyright © 2024 The ELPS authors

// Package analysis collects symbols and name usage from a parsed Python
// module.
//
// Analyze makes a single pre-order pass over the tree. It records every
// function, class, stored variable and import in discovery order, scores
// function complexity and tracks which names are defined and read. The
// result is consumed by the lint rules and the report encoder.
package analysis

import (
	"strings"

	"github.com/luthersystems/pyscan/astutil"
	"github.com/luthersystems/pyscan/pyast"
)

// Result holds the output of analyzing one module.
type Result struct {
	Tree    *pyast.Node
	Lines   []string
	Symbols *SymbolTable
	Usage   *Usage
}

// Analyze walks tree and builds its symbol table and usage sets. src is the
// text the tree was parsed from.
func Analyze(tree *pyast.Node, src []byte) *Result {
	a := &analyzer{
		result: &Result{
			Tree:    tree,
			Lines:   strings.Split(string(src), "\n"),
			Symbols: NewSymbolTable(),
			Usage:   newUsage(),
		},
	}
	astutil.Walk(tree, func(node *pyast.Node, _ *pyast.Node, _ int) {
		a.visit(node)
	})
	return a.result
}

type analyzer struct {
	result *Result
}

func (a *analyzer) visit(node *pyast.Node) {
	switch node.Kind {
	case pyast.KindFunctionDef, pyast.KindAsyncFunctionDef:
		a.function(node)
		a.result.Usage.Define(node.Name, node.Line)
	case pyast.KindClassDef:
		a.class(node)
		a.result.Usage.Define(node.Name, node.Line)
	case pyast.KindName:
		switch node.Ctx {
		case pyast.CtxStore:
			a.variable(node)
			a.result.Usage.Define(node.Name, node.Line)
		case pyast.CtxLoad:
			a.result.Usage.Use(node.Name)
		}
	case pyast.KindImport, pyast.KindImportFrom:
		a.imports(node)
	}
}

func (a *analyzer) function(node *pyast.Node) {
	a.result.Symbols.Functions = append(a.result.Symbols.Functions, &FunctionRecord{
		Name:         node.Name,
		Line:         node.Line,
		EndLine:      node.End(),
		Args:         astutil.PositionalParams(node),
		Decorators:   astutil.DottedNames(node.Decorators),
		IsAsync:      node.Kind == pyast.KindAsyncFunctionDef,
		HasDocstring: astutil.HasDocstring(node.Body),
		Complexity:   Complexity(node),
	})
}

func (a *analyzer) class(node *pyast.Node) {
	methods := []string{}
	for _, stmt := range node.Body {
		if stmt.Kind.IsFunction() {
			methods = append(methods, stmt.Name)
		}
	}
	a.result.Symbols.Classes = append(a.result.Symbols.Classes, &ClassRecord{
		Name:         node.Name,
		Line:         node.Line,
		EndLine:      node.End(),
		Bases:        astutil.DottedNames(node.Bases),
		Decorators:   astutil.DottedNames(node.Decorators),
		HasDocstring: astutil.HasDocstring(node.Body),
		Methods:      methods,
	})
}

func (a *analyzer) variable(node *pyast.Node) {
	a.result.Symbols.Variables = append(a.result.Symbols.Variables, &VariableRecord{
		Name:    node.Name,
		Line:    node.Line,
		Context: node.Ctx.String(),
	})
}

func (a *analyzer) imports(node *pyast.Node) {
	for _, alias := range node.Aliases {
		rec := &ImportRecord{Line: node.Line, Alias: alias.AsName}
		if node.Kind == pyast.KindImport {
			name := alias.Name
			rec.Type = ImportPlain
			rec.Module = &name
		} else {
			rec.Type = ImportFrom
			rec.Module = node.Module
			rec.Name = alias.Name
		}
		a.result.Symbols.Imports = append(a.result.Symbols.Imports, rec)
	}
}
