// Copyright © 2024 The ELPS authors

// Package diagnostic provides Rust-style annotated rendering of pyscan
// findings for terminal output. It does not depend on the lint or report
// packages so any command can use it.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column (0 = first non-blank character)
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single error, warning, or info finding with
// optional source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Code     string // rule id, shown as "warning[code]"
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines
}
