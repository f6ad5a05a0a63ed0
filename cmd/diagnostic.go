// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"

	"github.com/luthersystems/pyscan/diagnostic"
	"github.com/luthersystems/pyscan/lint"
	"github.com/luthersystems/pyscan/parser"
	"github.com/luthersystems/pyscan/report"
	"github.com/pkg/errors"
)

// issueToDiagnostic converts a lint.Issue to a diagnostic.Diagnostic.
func issueToDiagnostic(file string, issue lint.Issue) diagnostic.Diagnostic {
	sev := diagnostic.SeverityWarning
	if issue.Severity == lint.SeverityInfo {
		sev = diagnostic.SeverityInfo
	}
	d := diagnostic.Diagnostic{
		Severity: sev,
		Code:     issue.Rule,
		Message:  issue.Message,
	}
	if issue.Line > 0 {
		d.Spans = append(d.Spans, diagnostic.Span{File: file, Line: issue.Line})
	}
	d.Notes = append(d.Notes, "category: "+string(issue.Type))
	return d
}

// errorToDiagnostic converts an analysis failure to a diagnostic. Syntax
// errors point at their location.
func errorToDiagnostic(file string, err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Code:     "parse_error",
		Message:  err.Error(),
	}
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		d.Code = "syntax_error"
		if serr.Line > 0 {
			d.Spans = append(d.Spans, diagnostic.Span{File: file, Line: serr.Line, Col: serr.Col, Label: serr.Msg})
		}
	}
	return d
}

// renderText writes the outcome of one analysis Rust-style. The source
// shown in snippets is the text that was analyzed.
func renderText(w io.Writer, file string, rep *report.Success, err error, color diagnostic.ColorMode) error {
	r := &diagnostic.Renderer{Color: color}
	if err != nil {
		return r.Render(w, errorToDiagnostic(file, err))
	}
	r.SourceReader = diagnostic.StaticSource(file, rep.Source)
	if len(rep.Issues) == 0 {
		_, werr := fmt.Fprintf(w, "%s: no issues found\n", file)
		return werr
	}
	ds := make([]diagnostic.Diagnostic, 0, len(rep.Issues))
	for _, issue := range rep.Issues {
		ds = append(ds, issueToDiagnostic(file, issue))
	}
	if rerr := r.RenderAll(w, ds); rerr != nil {
		return rerr
	}
	_, werr := fmt.Fprintf(w, "\n%s: %d issue(s)\n", file, len(rep.Issues))
	return werr
}
