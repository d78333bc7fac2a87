// Package sqlitevec provides a SQLite-backed vector index using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/vector"
)

// Index implements vector.Index on SQLite with the sqlite-vec extension.
// Each Build creates its own database, so replacing a document means
// building a new index and closing the old one.
type Index struct {
	db     *sql.DB
	count  int
	dim    int
	logger *zap.Logger
}

// Config holds configuration for the sqlite-vec index.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Defaults to ":memory:", matching the single-session lifecycle of
	// a document index.
	DBPath string

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// Build constructs a fresh sqlite-vec index from a complete entry set.
func Build(ctx context.Context, cfg Config, entries []vector.Entry) (vector.Index, error) {
	if len(entries) == 0 {
		return nil, vector.ErrEmptyIndex
	}

	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dim := len(entries[0].Embedding)
	for _, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("inconsistent embedding dimensions: %d vs %d (chunk %d)",
				dim, len(e.Embedding), e.Chunk.Ordinal)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	// A second pooled connection to ":memory:" opens a fresh empty
	// database, so the pool must never grow past one connection.
	db.SetMaxOpenConns(1)

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRowContext(ctx, "SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// Chunk metadata lives in a plain table; vec0 virtual tables use
	// integer rowids, so chunk ordinals double as the join key.
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vec_chunks (
			rowid INTEGER PRIMARY KEY,
			text TEXT NOT NULL,
			source_page INTEGER NOT NULL,
			ordinal INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	// Cosine distance keeps the metric consistent with the other
	// backends; mixing metrics between index and query time is a
	// correctness bug.
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		dim,
	)
	if _, err := db.ExecContext(ctx, createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		embBlob := serializeFloat32(e.Embedding)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_chunks(rowid, text, source_page, ordinal) VALUES (?, ?, ?, ?)`,
			e.Chunk.Ordinal, e.Chunk.Text, e.Chunk.SourcePage, e.Chunk.Ordinal,
		); err != nil {
			db.Close()
			return nil, fmt.Errorf("inserting chunk %d: %w", e.Chunk.Ordinal, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_embeddings(rowid, embedding) VALUES (?, ?)`,
			e.Chunk.Ordinal, embBlob,
		); err != nil {
			db.Close()
			return nil, fmt.Errorf("inserting embedding for chunk %d: %w", e.Chunk.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	logger.Info("sqlite-vec index built",
		zap.String("db_path", dbPath),
		zap.Int("entries", len(entries)),
		zap.Int("dimensions", dim),
		zap.String("vec_version", vecVersion),
	)

	return &Index{
		db:     db,
		count:  len(entries),
		dim:    dim,
		logger: logger,
	}, nil
}

// Search runs a KNN query over the fetchK nearest neighbors and returns
// the top k.
func (ix *Index) Search(ctx context.Context, embedding []float32, k, fetchK int) ([]vector.Result, error) {
	if err := vector.ValidateK(k, fetchK); err != nil {
		return nil, err
	}
	if len(embedding) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(embedding), ix.dim)
	}

	queryBlob := serializeFloat32(embedding)

	// KNN query via vec0 MATCH over the fetchK candidate pool, then
	// JOIN back for the chunk metadata.
	rows, err := ix.db.QueryContext(ctx, `
		SELECT
			c.text,
			c.source_page,
			c.ordinal,
			ve.distance
		FROM vec_embeddings ve
		INNER JOIN vec_chunks c ON c.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance
	`, queryBlob, fetchK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.Result
	for rows.Next() {
		var chunk segment.Chunk
		var distance float64
		if err := rows.Scan(&chunk.Text, &chunk.SourcePage, &chunk.Ordinal, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.Result{
			Chunk: chunk,
			// Cosine distance to similarity: score = 1 - distance
			Score: float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	results = vector.RankResults(results, k)

	ix.logger.Debug("queried sqlite-vec index",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return ix.count
}

// Close releases the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

var _ vector.Index = (*Index)(nil)
