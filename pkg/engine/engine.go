// Package engine orchestrates document ingestion and grounded question
// answering over a single-document vector index.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/document"
	"github.com/docqueryco/docquery/pkg/embeddings"
	"github.com/docqueryco/docquery/pkg/retrieve"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/synthesis"
	"github.com/docqueryco/docquery/pkg/vector"
)

var (
	// ErrNoDocument is returned by Query before any successful
	// ProcessDocument call.
	ErrNoDocument = errors.New("no document loaded")

	// ErrEmptyQuestion is returned by Query for a blank question.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// Response is the result of one question, carrying the answer and the
// passages it was grounded in. Sources remain populated even when answer
// generation degraded, since retrieval success is independent of
// synthesis success.
type Response struct {
	Answer  string          `json:"answer"`
	Sources []segment.Chunk `json:"source_documents"`
}

// Config holds retrieval tuning for the engine.
type Config struct {
	// TopK is the number of passages handed to synthesis per question.
	// Defaults to retrieve.DefaultTopK.
	TopK int

	// FetchK is the candidate pool width for each search.
	// Defaults to retrieve.DefaultFetchK.
	FetchK int
}

// Deps are the collaborators injected at construction. All are required
// except Logger. Expensive clients (embedder, chat) are constructed once
// by the caller and injected, never reached as ambient globals, so tests
// can substitute deterministic fakes.
type Deps struct {
	// Extractor pulls page text out of document files.
	Extractor document.Extractor

	// Segmenter windows page text into chunks.
	Segmenter *segment.Segmenter

	// Embedder encodes chunks and questions.
	Embedder embeddings.Embedder

	// BuildIndex constructs a fresh index from embedded chunks.
	BuildIndex vector.BuildFunc

	// Synthesizer turns retrieved passages into a grounded answer.
	Synthesizer *synthesis.Synthesizer

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// Engine owns at most one live document index at a time and exposes
// ProcessDocument and Query as its only operations. Callers must
// serialize access; the internal mutex only guards the index slot so a
// query runs against a consistent snapshot.
type Engine struct {
	extractor   document.Extractor
	segmenter   *segment.Segmenter
	embedder    embeddings.Embedder
	buildIndex  vector.BuildFunc
	retriever   *retrieve.Retriever
	synthesizer *synthesis.Synthesizer
	logger      *zap.Logger

	topK   int
	fetchK int

	mu    sync.Mutex
	index vector.Index
}

// New creates an engine. Fails fast when a required collaborator is
// missing rather than deferring the error to first use.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if deps.Segmenter == nil {
		return nil, errors.New("segmenter is required")
	}
	if deps.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if deps.BuildIndex == nil {
		return nil, errors.New("index builder is required")
	}
	if deps.Synthesizer == nil {
		return nil, errors.New("synthesizer is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = retrieve.DefaultTopK
	}
	fetchK := cfg.FetchK
	if fetchK <= 0 {
		fetchK = retrieve.DefaultFetchK
	}
	if topK > fetchK {
		return nil, vector.ErrInvalidKf("top_k (%d) must not exceed fetch_k (%d)", topK, fetchK)
	}

	return &Engine{
		extractor:   deps.Extractor,
		segmenter:   deps.Segmenter,
		embedder:    deps.Embedder,
		buildIndex:  deps.BuildIndex,
		retriever:   retrieve.NewRetriever(deps.Embedder, logger),
		synthesizer: deps.Synthesizer,
		logger:      logger,
		topK:        topK,
		fetchK:      fetchK,
	}, nil
}

// ProcessDocument ingests the document at path: extract, segment, embed,
// build a fresh index, then swap it in. Build-then-swap: any failure
// leaves the previous index untouched, so a bad upload never destroys a
// working session. Returns the chunk count.
func (e *Engine) ProcessDocument(ctx context.Context, path string) (int, error) {
	pages, err := e.extractor.Extract(path)
	if err != nil {
		return 0, err
	}

	e.logger.Info("document extracted",
		zap.String("path", path),
		zap.Int("pages", len(pages)),
	)

	chunks := e.segmenter.Segment(pages)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document has no extractable text", vector.ErrEmptyIndex)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: expected %d vectors, got %d", vector.ErrEmbedding, len(chunks), len(vectors))
	}

	entries := make([]vector.Entry, len(chunks))
	for i := range chunks {
		entries[i] = vector.Entry{Chunk: chunks[i], Embedding: vectors[i]}
	}

	newIndex, err := e.buildIndex(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("building index: %w", err)
	}

	e.mu.Lock()
	old := e.index
	e.index = newIndex
	e.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			e.logger.Warn("closing replaced index", zap.Error(err))
		}
	}

	e.logger.Info("document indexed",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)),
	)

	return len(chunks), nil
}

// Query answers a question against the current document. Fails with
// ErrNoDocument before any successful ProcessDocument. Once retrieval
// succeeds, provider failures during synthesis are folded into the
// answer text and never raised, so the response always carries the
// retrieved sources.
func (e *Engine) Query(ctx context.Context, question string) (*Response, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	e.mu.Lock()
	index := e.index
	e.mu.Unlock()

	if index == nil {
		return nil, ErrNoDocument
	}

	passages, err := e.retriever.Retrieve(ctx, question, index, e.topK, e.fetchK)
	if err != nil {
		return nil, err
	}

	answer := e.synthesizer.Synthesize(ctx, question, passages)

	return &Response{
		Answer:  answer,
		Sources: passages,
	}, nil
}

// HasDocument reports whether an index is currently live.
func (e *Engine) HasDocument() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index != nil
}

// Close releases the current index and the injected clients.
func (e *Engine) Close() error {
	e.mu.Lock()
	index := e.index
	e.index = nil
	e.mu.Unlock()

	var errs []error
	if index != nil {
		errs = append(errs, index.Close())
	}
	errs = append(errs, e.embedder.Close())

	return errors.Join(errs...)
}
