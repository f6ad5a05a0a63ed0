// Copyright © 2024 The ELPS authors

// Package parser turns Python source text into a pyast tree.
//
// Parsing is done by the tree-sitter Python grammar. The concrete syntax
// tree is then lowered into pyast nodes: keyword tokens, punctuation and
// comments are dropped, expression contexts (load, store, del) are assigned
// and kind-specific slots are filled in.
package parser

import (
	"bytes"
	"context"
	"unicode/utf8"

	"github.com/luthersystems/pyscan/pyast"
	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrInvalidEncoding is returned for source that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("source is not valid utf-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse parses src and returns the root KindModule node. The filename is
// only used to describe syntax errors. Unparseable input yields a
// *SyntaxError.
func Parse(ctx context.Context, filename string, src []byte) (*pyast.Node, error) {
	src = bytes.TrimPrefix(src, utf8BOM)
	if !utf8.Valid(src) {
		return nil, errors.Wrapf(ErrInvalidEncoding, "%s", filename)
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "tree-sitter parse")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New("tree-sitter returned no root node")
	}
	if root.HasError() {
		return nil, syntaxErrorAt(root, filename)
	}

	l := &lowerer{text: string(src), filename: filename}
	mod := l.module(root)
	if l.err != nil {
		return nil, l.err
	}
	return mod, nil
}
