// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// lineText returns the 1-based line of content, or "" when out of range.
func lineText(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// lineRange covers the text of a 1-based line from its first non-blank
// character to its end.
func lineRange(content string, line int) protocol.Range {
	text := lineText(content, line)
	start := len(text) - len(strings.TrimLeft(text, " \t"))
	end := len(strings.TrimRight(text, " \t"))
	if end < start {
		end = start
	}
	return protocol.Range{
		Start: protocol.Position{Line: safeUint(line - 1), Character: safeUint(start)},
		End:   protocol.Position{Line: safeUint(line - 1), Character: safeUint(end)},
	}
}

// spanRange covers 1-based lines from through to, ending at the end of the
// last line.
func spanRange(content string, from, to int) protocol.Range {
	if to < from {
		to = from
	}
	r := lineRange(content, from)
	r.End = protocol.Position{Line: safeUint(to - 1), Character: safeUint(len(lineText(content, to)))}
	return r
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
