// Package retrieve selects the passages most relevant to a question via
// vector similarity. It is the sole read path into a document index.
package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/embeddings"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/vector"
)

const (
	// DefaultTopK is the default number of passages returned per question.
	DefaultTopK = 4

	// DefaultFetchK is the default candidate pool width. Over-fetching
	// then narrowing leaves headroom for a re-ranking stage without
	// re-querying the index.
	DefaultFetchK = 10
)

// Retriever embeds a question and searches a document index for the most
// similar chunks.
type Retriever struct {
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewRetriever creates a retriever around the given embedder.
func NewRetriever(embedder embeddings.Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve returns the chunks most similar to the question, in
// descending-similarity order, scores discarded.
func (r *Retriever) Retrieve(ctx context.Context, question string, index vector.Index, k, fetchK int) ([]segment.Chunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if fetchK <= 0 {
		fetchK = DefaultFetchK
	}

	r.logger.Debug("retrieving passages",
		zap.String("question", question),
		zap.Int("k", k),
		zap.Int("fetch_k", fetchK),
	)

	queryEmbedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := index.Search(ctx, queryEmbedding, k, fetchK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	chunks := make([]segment.Chunk, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, result.Chunk)
	}

	return chunks, nil
}
