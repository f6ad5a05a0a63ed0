// Copyright © 2024 The ELPS authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestFoldingRange(t *testing.T) {
	s := testServer()

	t.Run("single-line def is not folded", func(t *testing.T) {
		doc := openDoc(s, "file:///test/single.py", "def foo(): return 42\n")
		result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		})
		require.NoError(t, err)
		assert.Empty(t, filterFoldKind(result, protocol.FoldingRangeKindRegion))
	})

	t.Run("multi-line def is folded", func(t *testing.T) {
		doc := openDoc(s, "file:///test/multi.py", "def foo(x):\n    return x + 1\n")
		result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		})
		require.NoError(t, err)
		regions := filterFoldKind(result, protocol.FoldingRangeKindRegion)
		require.Len(t, regions, 1)
		assert.Equal(t, protocol.UInteger(0), regions[0].StartLine)
		assert.Equal(t, protocol.UInteger(1), regions[0].EndLine)
	})

	t.Run("class and methods produce separate ranges", func(t *testing.T) {
		src := "class A:\n    def f(self):\n        pass\n\n    def g(self):\n        pass\n"
		doc := openDoc(s, "file:///test/nested.py", src)
		result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		})
		require.NoError(t, err)
		regions := filterFoldKind(result, protocol.FoldingRangeKindRegion)
		require.Len(t, regions, 3)
		assert.Equal(t, protocol.UInteger(5), regions[0].EndLine)
		assert.Equal(t, protocol.UInteger(1), regions[1].StartLine)
		assert.Equal(t, protocol.UInteger(4), regions[2].StartLine)
	})

	t.Run("consecutive comments produce a comment fold", func(t *testing.T) {
		src := "# line 1\n# line 2\n# line 3\nx = 1\n"
		doc := openDoc(s, "file:///test/comments.py", src)
		result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		})
		require.NoError(t, err)
		comments := filterFoldKind(result, protocol.FoldingRangeKindComment)
		require.Len(t, comments, 1)
		assert.Equal(t, protocol.UInteger(0), comments[0].StartLine)
		assert.Equal(t, protocol.UInteger(2), comments[0].EndLine)
	})

	t.Run("syntax error still folds comments", func(t *testing.T) {
		src := "# a\n# b\ndef broken(:\n"
		doc := openDoc(s, "file:///test/broken.py", src)
		result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		})
		require.NoError(t, err)
		assert.Empty(t, filterFoldKind(result, protocol.FoldingRangeKindRegion))
		assert.Len(t, filterFoldKind(result, protocol.FoldingRangeKindComment), 1)
	})
}

func TestCommentFoldingAtEOF(t *testing.T) {
	ranges := commentFoldingRanges("x = 1\n# a\n# b")
	require.Len(t, ranges, 1)
	assert.Equal(t, protocol.UInteger(1), ranges[0].StartLine)
	assert.Equal(t, protocol.UInteger(2), ranges[0].EndLine)
}

func filterFoldKind(ranges []protocol.FoldingRange, kind protocol.FoldingRangeKind) []protocol.FoldingRange {
	var out []protocol.FoldingRange
	for _, r := range ranges {
		if r.Kind != nil && *r.Kind == string(kind) {
			out = append(out, r)
		}
	}
	return out
}
