// Package vector provides interfaces and implementations for vector
// indexing and similarity search over document chunks.
package vector

import (
	"context"
	"sort"

	"github.com/docqueryco/docquery/pkg/segment"
)

// Entry pairs a chunk with its embedding. Entries are the unit an index
// is built from.
type Entry struct {
	// Chunk is the source passage.
	Chunk segment.Chunk

	// Embedding is the vector representation of the chunk text.
	Embedding []float32
}

// Result is a search hit with its similarity score.
type Result struct {
	// Chunk is the matched passage.
	Chunk segment.Chunk

	// Score is the similarity score (higher = more similar).
	Score float32
}

// Index is a nearest-neighbor structure over exactly one document's
// chunks. An index is built atomically from a complete entry set and is
// immutable afterwards.
type Index interface {
	// Search returns up to k highest-similarity entries chosen from a
	// candidate pool of the fetchK nearest neighbors. Results are
	// ordered by descending score, ties broken by ascending chunk
	// ordinal. Fails with ErrInvalidK when k <= 0 or k > fetchK.
	Search(ctx context.Context, embedding []float32, k, fetchK int) ([]Result, error)

	// Len returns the number of indexed entries.
	Len() int

	// Close releases any resources held by the index.
	Close() error
}

// BuildFunc constructs a fresh index from a complete entry set.
// Implementations fail with ErrEmptyIndex when given zero entries.
type BuildFunc func(ctx context.Context, entries []Entry) (Index, error)

// ValidateK checks the search pool parameters.
func ValidateK(k, fetchK int) error {
	if k <= 0 {
		return ErrInvalidKf("k must be positive, got %d", k)
	}
	if k > fetchK {
		return ErrInvalidKf("k (%d) must not exceed fetch_k (%d)", k, fetchK)
	}
	return nil
}

// RankResults orders results by descending score with ties broken by
// ascending chunk ordinal, then truncates to k. Backends share this so
// tie-breaking is deterministic regardless of how candidates arrive.
func RankResults(results []Result, k int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}
