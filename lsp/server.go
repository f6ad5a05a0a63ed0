// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for Python files.
// It publishes pyscan issues as diagnostics and provides document symbols,
// folding ranges and hover summaries built from the symbol table.
package lsp

import (
	"os"
	"sync"
	"time"

	"github.com/luthersystems/pyscan/lint"
	"github.com/rs/zerolog/log"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "pyscan-lsp"

// Server is the pyscan language server.
type Server struct {
	handler protocol.Handler
	glspSrv *glspserver.Server
	docs    *DocumentStore

	// Linter instance shared across diagnostics runs. It holds no
	// per-run state.
	linter *lint.Linter

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithLinter replaces the default rule set.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) { s.linter = l }
}

// New creates a new pyscan LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		linter:   lint.NewLinter(nil),
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentFoldingRange:   s.textDocumentFoldingRange,
		TextDocumentHover:          s.textDocumentHover,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)
	if params.RootURI != nil {
		log.Debug().Str("root", *params.RootURI).Msg("lsp initialize")
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureAnalysis ensures the document has a current analysis result.
func (s *Server) ensureAnalysis(doc *Document) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.analyzed {
		return
	}
	doc.analyze(s.linter)
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
