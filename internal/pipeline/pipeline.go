// Package pipeline turns an uploaded document into an analysis report:
// text extraction, clause segmentation, entity extraction and document
// classification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clausewise/internal/assistant"
	"clausewise/internal/clause"
	"clausewise/internal/entity"
	"clausewise/internal/llm"
	"clausewise/internal/parser"
)

// MinDocumentLength is the shortest trimmed text worth analysing.
const MinDocumentLength = 10

// DirectTextFilename names reports built from pasted text.
const DirectTextFilename = "Direct Text Input"

var (
	ErrNoInput  = errors.New("no document provided")
	ErrTooShort = errors.New("document appears to be empty or too short to analyze")
)

// Report is the result of analysing one document.
type Report struct {
	ID        uuid.UUID     `json:"id"`
	Filename  string        `json:"filename"`
	Format    parser.Format `json:"format"`
	DocType   string        `json:"doc_type"`
	Canonical bool          `json:"doc_type_canonical"`
	Entities  entity.Bag    `json:"entities"`
	Clauses   []string      `json:"clauses"`
	Text      string        `json:"raw_text"`
	Settings  llm.Settings  `json:"settings"`
}

// Observer records analysis outcomes.
type Observer interface {
	ObserveAnalysis(format, outcome string, elapsed time.Duration)
}

// Outcomes reported to the Observer.
const (
	OutcomeOK         = "ok"
	OutcomeNoInput    = "no_input"
	OutcomeTooShort   = "too_short"
	OutcomeUnreadable = "unreadable"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithObserver reports every analysis to obs.
func WithObserver(obs Observer) Option {
	return func(a *Analyzer) { a.obs = obs }
}

// WithRegistry replaces the default parser registry.
func WithRegistry(r *parser.Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// Analyzer runs the analysis pipeline. It is safe for concurrent use.
type Analyzer struct {
	log        *slog.Logger
	registry   *parser.Registry
	extractor  *entity.Extractor
	classifier *assistant.Classifier
	obs        Observer
}

// New returns an Analyzer that classifies documents through gw.
func New(gw llm.Gateway, log *slog.Logger, opts ...Option) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	a := &Analyzer{
		log:        log,
		registry:   parser.NewRegistry(),
		extractor:  entity.New(),
		classifier: assistant.NewClassifier(gw),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts the text of doc and analyses it.
func (a *Analyzer) Analyze(ctx context.Context, doc parser.RawDocument, s llm.Settings) (Report, error) {
	start := time.Now()
	text, format, err := a.registry.Extract(doc)
	if err != nil {
		a.observe(format, OutcomeUnreadable, start)
		a.log.Warn("document extraction failed", "filename", doc.Filename, "format", format, "err", err)
		return Report{}, fmt.Errorf("analyze %q: %w", doc.Filename, err)
	}
	return a.analyze(ctx, doc.Filename, format, text, s, start)
}

// AnalyzeText analyses pasted text.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string, s llm.Settings) (Report, error) {
	return a.analyze(ctx, DirectTextFilename, parser.FormatText, text, s, time.Now())
}

func (a *Analyzer) analyze(ctx context.Context, filename string, format parser.Format, text string, s llm.Settings, start time.Time) (Report, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinDocumentLength {
		a.observe(format, OutcomeTooShort, start)
		return Report{}, ErrTooShort
	}
	s = s.WithDefaults()
	norm := clause.Normalize(text)

	var (
		clauses []string
		bag     entity.Bag
		class   assistant.Classification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clauses = clause.Segment(norm)
		return nil
	})
	g.Go(func() error {
		bag = a.extractor.Extract(norm)
		return nil
	})
	g.Go(func() error {
		class = a.classifier.Classify(gctx, norm, s)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	a.observe(format, OutcomeOK, start)
	a.log.Info("document analysed",
		"filename", filename,
		"format", format,
		"doc_type", class.Label,
		"clauses", len(clauses),
		"entities", bag.Total(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Report{
		ID:        uuid.New(),
		Filename:  filename,
		Format:    format,
		DocType:   class.Label,
		Canonical: class.Canonical,
		Entities:  bag,
		Clauses:   clauses,
		Text:      text,
		Settings:  s,
	}, nil
}

func (a *Analyzer) observe(format parser.Format, outcome string, start time.Time) {
	if a.obs != nil {
		a.obs.ObserveAnalysis(string(format), outcome, time.Since(start))
	}
}
