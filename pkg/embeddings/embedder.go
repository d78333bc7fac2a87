// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
// Implementations must be deterministic for a fixed model configuration:
// the same text always yields the same vector.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts texts into vector embeddings, order preserved
	// and 1:1 with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
