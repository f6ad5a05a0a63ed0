// Copyright © 2024 The ELPS authors

package lsp

import (
	"time"

	"github.com/luthersystems/pyscan/lint"
	"github.com/luthersystems/pyscan/parser"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	debounceDelay    = 300 * time.Millisecond
	diagnosticSource = "pyscan"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("uri", doc.URI).Msg("analysis panicked")
			}
		}()
		if d := s.docs.Get(doc.URI); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish analyzes a document and publishes the resulting
// diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)
	uri, content, rep, err := doc.snapshot()

	diags := []protocol.Diagnostic{}
	if err != nil {
		diags = append(diags, errorDiagnostic(err))
	} else if rep != nil {
		for _, issue := range rep.Issues {
			diags = append(diags, convertIssue(content, issue))
		}
	}
	log.Debug().Str("uri", uri).Int("diagnostics", len(diags)).Msg("publish diagnostics")

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// errorDiagnostic describes a document that could not be analyzed. Syntax
// errors point at their location; anything else is pinned to the start of
// the file.
func errorDiagnostic(err error) protocol.Diagnostic {
	var start protocol.Position
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		start = protocol.Position{Line: safeUint(serr.Line - 1), Character: safeUint(serr.Col - 1)}
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: start},
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr(diagnosticSource),
		Message:  err.Error(),
	}
}

// convertIssue converts a lint.Issue to an LSP Diagnostic spanning the
// issue's line.
func convertIssue(content string, issue lint.Issue) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    lineRange(content, issue.Line),
		Severity: severity(mapLintSeverity(issue.Severity)),
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: issue.Rule},
		Message:  issue.Message,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
