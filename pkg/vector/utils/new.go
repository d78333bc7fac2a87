// Package vectorutils is the vector utility package
package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/vector"
	"github.com/docqueryco/docquery/pkg/vector/memory"
	"github.com/docqueryco/docquery/pkg/vector/qdrant"
	"github.com/docqueryco/docquery/pkg/vector/sqlitevec"
)

type NewIndexBuilderOpts struct {
	ProviderType string
	Target       string
	Logger       *zap.Logger
}

// NewIndexBuilder returns the BuildFunc for the configured vector store
// provider.
func NewIndexBuilder(o *NewIndexBuilderOpts) (vector.BuildFunc, error) {
	switch o.ProviderType {
	case "memory", "":
		return memory.Build, nil
	case "sqlite":
		return func(ctx context.Context, entries []vector.Entry) (vector.Index, error) {
			return sqlitevec.Build(ctx, sqlitevec.Config{
				DBPath: o.Target,
				Logger: o.Logger,
			}, entries)
		}, nil
	case "qdrant":
		return func(ctx context.Context, entries []vector.Entry) (vector.Index, error) {
			return qdrant.Build(ctx, qdrant.Config{
				Target: o.Target,
				Logger: o.Logger,
			}, entries)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
