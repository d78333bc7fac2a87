// Package engineutils is the engine utility package
package engineutils

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/chat"
	chatutils "github.com/docqueryco/docquery/pkg/chat/utils"
	"github.com/docqueryco/docquery/pkg/config"
	"github.com/docqueryco/docquery/pkg/document"
	documentutils "github.com/docqueryco/docquery/pkg/document/utils"
	embeddingutils "github.com/docqueryco/docquery/pkg/embeddings/utils"
	"github.com/docqueryco/docquery/pkg/engine"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/synthesis"
	vectorutils "github.com/docqueryco/docquery/pkg/vector/utils"
)

// NewEngine assembles a ready-to-use engine from the resolved config.
// The returned chat client is owned by the caller and must be closed
// alongside the engine.
func NewEngine(cfg *config.Config, logger *zap.Logger) (*engine.Engine, chat.Client, error) {
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	chatClient, err := chatutils.NewClient(&chatutils.NewClientOpts{
		ProviderType: cfg.Chat.Provider,
		TargetURL:    cfg.Chat.Target,
		Model:        cfg.Chat.Model,
		Timeout:      time.Duration(cfg.Chat.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating chat client: %w", err)
	}

	buildIndex, err := vectorutils.NewIndexBuilder(&vectorutils.NewIndexBuilderOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating index builder: %w", err)
	}

	synthesizer := synthesis.NewSynthesizer(chatClient, synthesis.Config{
		Temperature: cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
		Logger:      logger,
	})

	eng, err := engine.New(
		engine.Config{
			TopK:   cfg.Retrieval.TopK,
			FetchK: cfg.Retrieval.FetchK,
		},
		engine.Deps{
			Extractor:   document.ExtractFunc(documentutils.Extract),
			Segmenter:   segment.NewSegmenter(cfg.Segment.ChunkSize, cfg.Segment.ChunkOverlap),
			Embedder:    embedder,
			BuildIndex:  buildIndex,
			Synthesizer: synthesizer,
			Logger:      logger,
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating engine: %w", err)
	}

	return eng, chatClient, nil
}
