// Package parser turns uploaded files into plain text.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Format identifies how a document was decoded.
type Format string

const (
	FormatText Format = "txt"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// RawDocument is an uploaded file before extraction.
type RawDocument struct {
	Filename string
	Data     []byte
}

// Parser extracts text from one file format.
type Parser interface {
	// Parse returns the document text.
	Parse(data []byte) (string, error)

	// Format names the format this parser decodes.
	Format() Format

	// Extensions lists the lowercase file extensions, with dot, it handles.
	Extensions() []string
}

// Error reports a document that could not be decoded.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s text: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Registry picks a parser by file extension. Unknown extensions fall back to
// plain text.
type Registry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	fallback Parser
}

// NewRegistry returns a registry with the text, DOCX and PDF parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers:  make(map[string]Parser),
		fallback: NewTextParser(),
	}
	r.Register(r.fallback)
	r.Register(NewDOCXParser())
	r.Register(NewPDFParser())
	return r
}

// Register adds p for each of its extensions, replacing earlier parsers.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.Extensions() {
		r.parsers[strings.ToLower(ext)] = p
	}
}

// ForFile returns the parser for filename.
func (r *Registry) ForFile(filename string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.parsers[strings.ToLower(filepath.Ext(filename))]; ok {
		return p
	}
	return r.fallback
}

// Extract decodes doc and reports the format used.
func (r *Registry) Extract(doc RawDocument) (string, Format, error) {
	p := r.ForFile(doc.Filename)
	text, err := p.Parse(doc.Data)
	if err != nil {
		return "", p.Format(), &Error{Format: p.Format(), Err: err}
	}
	return text, p.Format(), nil
}
