// Package qdrant provides a Qdrant-backed vector index using the official
// gRPC client. Chunk metadata stays client-side keyed by ordinal; Qdrant
// only handles the nearest-neighbor search.
package qdrant

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/vector"
)

const (
	// DefaultHost is the default Qdrant gRPC host.
	DefaultHost = "localhost"

	// DefaultPort is the default Qdrant gRPC port.
	DefaultPort = 6334
)

// Index implements vector.Index on a dedicated Qdrant collection. The
// collection is created at Build and dropped at Close, matching the
// single-document index lifecycle.
type Index struct {
	client     *qdrant.Client
	collection string
	chunks     map[uint64]segment.Chunk
	dim        int
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant index.
type Config struct {
	// Target is the Qdrant gRPC address as "host:port".
	// Defaults to localhost:6334 if empty.
	Target string

	// APIKey authenticates against a secured Qdrant instance (optional).
	APIKey string

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// Build creates a fresh collection with cosine distance and upserts every
// entry into it.
func Build(ctx context.Context, cfg Config, entries []vector.Entry) (vector.Index, error) {
	if len(entries) == 0 {
		return nil, vector.ErrEmptyIndex
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	host, port, err := splitTarget(cfg.Target)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	dim := len(entries[0].Embedding)
	for _, e := range entries {
		if len(e.Embedding) != dim {
			client.Close()
			return nil, fmt.Errorf("inconsistent embedding dimensions: %d vs %d (chunk %d)",
				dim, len(e.Embedding), e.Chunk.Ordinal)
		}
	}

	// A throwaway collection per build keeps replacement semantics
	// simple: the old index drops its collection on Close.
	collection := "docquery-" + uuid.NewString()

	if err := client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: creating collection: %v", vector.ErrConnection, err)
	}

	chunks := make(map[uint64]segment.Chunk, len(entries))
	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		id := uint64(e.Chunk.Ordinal)
		chunks[id] = e.Chunk
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(id),
			Vectors: qdrant.NewVectors(e.Embedding...),
		})
	}

	wait := true
	if _, err := client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		_ = client.DeleteCollection(ctx, collection)
		client.Close()
		return nil, fmt.Errorf("%w: upserting points: %v", vector.ErrConnection, err)
	}

	logger.Info("qdrant index built",
		zap.String("collection", collection),
		zap.Int("entries", len(entries)),
		zap.Int("dimensions", dim),
	)

	return &Index{
		client:     client,
		collection: collection,
		chunks:     chunks,
		dim:        dim,
		logger:     logger,
	}, nil
}

// Search queries the fetchK nearest points and returns the top k.
func (ix *Index) Search(ctx context.Context, embedding []float32, k, fetchK int) ([]vector.Result, error) {
	if err := vector.ValidateK(k, fetchK); err != nil {
		return nil, err
	}
	if len(embedding) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(embedding), ix.dim)
	}

	limit := uint64(fetchK)
	points, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ix.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying points: %v", vector.ErrConnection, err)
	}

	results := make([]vector.Result, 0, len(points))
	for _, p := range points {
		chunk, ok := ix.chunks[p.GetId().GetNum()]
		if !ok {
			continue
		}
		results = append(results, vector.Result{
			Chunk: chunk,
			Score: p.GetScore(),
		})
	}

	results = vector.RankResults(results, k)

	ix.logger.Debug("queried qdrant index",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Close drops the collection and closes the client connection.
func (ix *Index) Close() error {
	err := ix.client.DeleteCollection(context.Background(), ix.collection)
	if cerr := ix.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func splitTarget(target string) (string, int, error) {
	if target == "" {
		return DefaultHost, DefaultPort, nil
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// No port in the target, use the default
		return target, DefaultPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid qdrant target %q: %w", target, err)
	}

	return host, port, nil
}

var _ vector.Index = (*Index)(nil)
