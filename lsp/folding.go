// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line function and class definitions
// and consecutive comment blocks.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, content, rep, _ := doc.snapshot()

	var ranges []protocol.FoldingRange
	if rep != nil {
		for _, it := range outline(rep) {
			if it.endLine > it.line {
				kind := string(protocol.FoldingRangeKindRegion)
				ranges = append(ranges, protocol.FoldingRange{
					StartLine: safeUint(it.line - 1),
					EndLine:   safeUint(it.endLine - 1),
					Kind:      &kind,
				})
			}
		}
	}
	ranges = append(ranges, commentFoldingRanges(content)...)
	return ranges, nil
}

// commentFoldingRanges detects consecutive lines starting with "#" and
// produces a folding range for each block of 2+ lines.
func commentFoldingRanges(content string) []protocol.FoldingRange {
	lines := strings.Split(content, "\n")
	var ranges []protocol.FoldingRange
	flush := func(from, to int) {
		if to > from {
			kind := string(protocol.FoldingRangeKindComment)
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(from),
				EndLine:   safeUint(to),
				Kind:      &kind,
			})
		}
	}

	blockStart := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			if blockStart < 0 {
				blockStart = i
			}
			continue
		}
		if blockStart >= 0 {
			flush(blockStart, i-1)
			blockStart = -1
		}
	}
	if blockStart >= 0 {
		flush(blockStart, len(lines)-1)
	}
	return ranges
}
