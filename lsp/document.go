// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"sync"

	"github.com/luthersystems/pyscan/lint"
	"github.com/luthersystems/pyscan/report"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	// analyzed is set once report or err reflects Content.
	analyzed bool
	report   *report.Success
	err      error
}

// analyze runs the full pipeline over the document content. Each run is
// independent of the previous one.
func (d *Document) analyze(linter *lint.Linter) {
	d.report, d.err = report.Analyze(context.Background(), uriToPath(d.URI), []byte(d.Content), linter)
	d.analyzed = true
}

// snapshot returns the document fields under the lock.
func (d *Document) snapshot() (uri, content string, rep *report.Success, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.URI, d.Content, d.report, d.err
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and drops its cached
// analysis.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.analyzed = false
	doc.report, doc.err = nil, nil
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}
