// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/luthersystems/pyscan/report"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// outlineItem is a function or class definition with its line span.
type outlineItem struct {
	name    string
	detail  string
	line    int
	endLine int
	class   bool
}

// outline returns the definitions of rep sorted by start line. Wider
// definitions come first when two start on the same line.
func outline(rep *report.Success) []outlineItem {
	var items []outlineItem
	for _, c := range rep.Symbols.Classes {
		detail := "class"
		if len(c.Bases) > 0 {
			detail = "class(" + strings.Join(c.Bases, ", ") + ")"
		}
		items = append(items, outlineItem{name: c.Name, detail: detail, line: c.Line, endLine: c.EndLine, class: true})
	}
	for _, fn := range rep.Symbols.Functions {
		items = append(items, outlineItem{name: fn.Name, detail: "(" + strings.Join(fn.Args, ", ") + ")", line: fn.Line, endLine: fn.EndLine})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].line != items[j].line {
			return items[i].line < items[j].line
		}
		return items[i].endLine > items[j].endLine
	})
	return items
}

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request. Definitions are nested by line containment; functions directly
// inside a class are reported as methods.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, content, rep, _ := doc.snapshot()
	if rep == nil {
		return nil, nil
	}
	items := outline(rep)
	symbols, _ := nestSymbols(content, items, 0, len(items), nil)
	// Return as []DocumentSymbol (the preferred hierarchical form).
	return symbols, nil
}

// nestSymbols builds the symbols for items[i:end] that lie inside parent
// and returns the index of the first item it did not consume.
func nestSymbols(content string, items []outlineItem, i, end int, parent *outlineItem) ([]protocol.DocumentSymbol, int) {
	symbols := []protocol.DocumentSymbol{}
	for i < end {
		it := items[i]
		if parent != nil && it.endLine > parent.endLine {
			break
		}
		kind := protocol.SymbolKindFunction
		switch {
		case it.class:
			kind = protocol.SymbolKindClass
		case parent != nil && parent.class:
			kind = protocol.SymbolKindMethod
		}
		detail := it.detail
		sym := protocol.DocumentSymbol{
			Name:           it.name,
			Detail:         &detail,
			Kind:           kind,
			Range:          spanRange(content, it.line, it.endLine),
			SelectionRange: lineRange(content, it.line),
		}
		var children []protocol.DocumentSymbol
		children, i = nestSymbols(content, items, i+1, end, &it)
		if len(children) > 0 {
			sym.Children = children
		}
		symbols = append(symbols, sym)
	}
	return symbols, i
}
