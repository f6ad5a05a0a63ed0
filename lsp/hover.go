// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/pyscan/analysis"
	"github.com/luthersystems/pyscan/report"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request. Hovering the
// header line of a function or class shows a summary of its record.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, content, rep, _ := doc.snapshot()
	if rep == nil {
		return nil, nil
	}

	line := int(params.Position.Line) + 1
	text := hoverContent(rep, line)
	if text == "" {
		return nil, nil
	}
	r := lineRange(content, line)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
		Range: &r,
	}, nil
}

// hoverContent builds Markdown for the definition starting on line.
func hoverContent(rep *report.Success, line int) string {
	for _, fn := range rep.Symbols.Functions {
		if fn.Line == line {
			return functionHover(fn)
		}
	}
	for _, c := range rep.Symbols.Classes {
		if c.Line == line {
			return classHover(c)
		}
	}
	return ""
}

func functionHover(fn *analysis.FunctionRecord) string {
	var sb strings.Builder
	kind := "function"
	prefix := "def"
	if fn.IsAsync {
		kind = "async function"
		prefix = "async def"
	}
	fmt.Fprintf(&sb, "**%s** `%s`\n\n```python\n", kind, fn.Name)
	for _, d := range fn.Decorators {
		fmt.Fprintf(&sb, "@%s\n", d)
	}
	fmt.Fprintf(&sb, "%s %s(%s)\n```", prefix, fn.Name, strings.Join(fn.Args, ", "))
	fmt.Fprintf(&sb, "\n\n%d lines, complexity %d", fn.Length(), fn.Complexity)
	if !fn.HasDocstring {
		sb.WriteString(", no docstring")
	}
	return sb.String()
}

func classHover(c *analysis.ClassRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**class** `%s`\n\n```python\n", c.Name)
	for _, d := range c.Decorators {
		fmt.Fprintf(&sb, "@%s\n", d)
	}
	if len(c.Bases) > 0 {
		fmt.Fprintf(&sb, "class %s(%s)\n```", c.Name, strings.Join(c.Bases, ", "))
	} else {
		fmt.Fprintf(&sb, "class %s\n```", c.Name)
	}
	if len(c.Methods) > 0 {
		fmt.Fprintf(&sb, "\n\nMethods: %s", strings.Join(c.Methods, ", "))
	}
	if !c.HasDocstring {
		sb.WriteString("\n\nNo docstring")
	}
	return sb.String()
}
