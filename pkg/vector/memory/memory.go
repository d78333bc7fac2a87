// Package memory provides an exact in-memory vector index using a linear
// cosine-similarity scan. At single-document scale this is the default
// backend; approximate structures are an optimization, not a correctness
// requirement.
package memory

import (
	"context"
	"fmt"
	"math"

	"github.com/docqueryco/docquery/pkg/vector"
)

// Index holds the entries of one document. Immutable after Build.
type Index struct {
	entries []vector.Entry
	dim     int
}

// Build constructs a fresh index from a complete entry set.
func Build(_ context.Context, entries []vector.Entry) (vector.Index, error) {
	if len(entries) == 0 {
		return nil, vector.ErrEmptyIndex
	}

	dim := len(entries[0].Embedding)
	for _, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("inconsistent embedding dimensions: %d vs %d (chunk %d)",
				dim, len(e.Embedding), e.Chunk.Ordinal)
		}
	}

	owned := make([]vector.Entry, len(entries))
	copy(owned, entries)

	return &Index{entries: owned, dim: dim}, nil
}

// Search scans every entry, ranks by cosine similarity, and returns the
// top k from the fetchK nearest candidates.
func (ix *Index) Search(_ context.Context, embedding []float32, k, fetchK int) ([]vector.Result, error) {
	if err := vector.ValidateK(k, fetchK); err != nil {
		return nil, err
	}
	if len(embedding) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(embedding), ix.dim)
	}

	results := make([]vector.Result, 0, len(ix.entries))
	for _, e := range ix.entries {
		results = append(results, vector.Result{
			Chunk: e.Chunk,
			Score: CosineSimilarity(embedding, e.Embedding),
		})
	}

	// Widen to the fetchK candidate pool first, then narrow to k. With
	// raw similarity ranking the narrowing is "take top k", which keeps
	// fetchK as headroom for a re-ranking stage.
	results = vector.RankResults(results, fetchK)
	results = vector.RankResults(results, k)

	return results, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Close releases resources held by the index.
func (ix *Index) Close() error {
	return nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

var _ vector.Index = (*Index)(nil)
