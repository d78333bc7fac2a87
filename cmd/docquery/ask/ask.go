// Package askcmder provides the ask command for one-shot document
// question answering.
package askcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/cliui"
	"github.com/docqueryco/docquery/pkg/config"
	"github.com/docqueryco/docquery/pkg/engine"
	engineutils "github.com/docqueryco/docquery/pkg/engine/utils"
	"github.com/docqueryco/docquery/pkg/logger"
	"github.com/docqueryco/docquery/pkg/utils"
)

const askLongDesc string = `Ask a question about a document.

Ingests the document, retrieves the passages most relevant to the
question, and answers strictly from those passages. The cited pages are
printed below the answer.

Examples:
  docquery ask report.pdf "What was the Q3 revenue?"
  docquery ask notes.md "Who owns the migration work?" --top-k 6`

const askShortDesc string = "Ask a question about a document"

const sourcePreviewLen = 200

type askCommander struct {
	path     string
	question string
	debug    bool

	cfg    *config.Config
	logger *zap.Logger
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	var (
		topK              int
		fetchK            int
		chatProvider      string
		model             string
		embeddingProvider string
		vectorStore       string
	)

	cmd := &cobra.Command{
		Use:   "ask <file> <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if cmd.Flags().Changed("top-k") {
				cfg.Retrieval.TopK = topK
			}
			if cmd.Flags().Changed("fetch-k") {
				cfg.Retrieval.FetchK = fetchK
			}
			if cmd.Flags().Changed("chat-provider") {
				cfg.Chat.Provider = chatProvider
			}
			if cmd.Flags().Changed("model") {
				cfg.Chat.Model = model
			}
			if cmd.Flags().Changed("embedding-provider") {
				cfg.Embedding.Provider = embeddingProvider
			}
			if cmd.Flags().Changed("vector-store") {
				cfg.VectorStore.Provider = vectorStore
			}

			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			cmder.path = args[0]
			cmder.question = args[1]
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().IntVarP(&topK, "top-k", "k", defaults.Retrieval.TopK, "Number of passages handed to the model")
	cmd.Flags().IntVar(&fetchK, "fetch-k", defaults.Retrieval.FetchK, "Candidate pool width per search")
	cmd.Flags().StringVar(&chatProvider, "chat-provider", defaults.Chat.Provider, "Chat provider (groq, ollama)")
	cmd.Flags().StringVarP(&model, "model", "m", defaults.Chat.Model, "Chat model name")
	cmd.Flags().StringVar(&embeddingProvider, "embedding-provider", defaults.Embedding.Provider, "Embedding provider (ollama, openai)")
	cmd.Flags().StringVar(&vectorStore, "vector-store", defaults.VectorStore.Provider, "Vector store (memory, sqlite, qdrant)")

	return cmd
}

func (c *askCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	eng, chatClient, err := engineutils.NewEngine(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()
	defer func() { _ = chatClient.Close() }()

	ctx := context.Background()

	fmt.Println()
	var chunks int
	err = cliui.Step(os.Stdout, fmt.Sprintf("Reading %s", c.path), func() error {
		var stepErr error
		chunks, stepErr = eng.ProcessDocument(ctx, c.path)
		return stepErr
	})
	if err != nil {
		return fmt.Errorf("processing document: %w", err)
	}

	c.logger.Debug("document ready",
		zap.String("path", c.path),
		zap.Int("chunks", chunks),
	)

	var resp *engine.Response
	err = cliui.Step(os.Stdout, "Answering", func() error {
		var stepErr error
		resp, stepErr = eng.Query(ctx, c.question)
		return stepErr
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	c.printResponse(resp)
	return nil
}

// printResponse renders the answer as markdown, then the cited pages
// with a short preview each.
func (c *askCommander) printResponse(resp *engine.Response) {
	fmt.Println()

	rendered, err := cliui.RenderMarkdown(resp.Answer)
	if err != nil {
		// Fall back to the raw answer when the terminal renderer fails
		rendered = resp.Answer + "\n"
	}
	fmt.Print(rendered)

	if len(resp.Sources) == 0 {
		return
	}

	fmt.Printf("  %s\n", cliui.KeyStyle.Render("Sources"))
	for _, source := range resp.Sources {
		preview := strings.Join(strings.Fields(source.Text), " ")
		fmt.Printf("  %s %s\n",
			cliui.PageStyle.Render(fmt.Sprintf("[Page %d]", source.SourcePage+1)),
			cliui.DimStyle.Render(utils.Truncate(preview, sourcePreviewLen)),
		)
	}
	fmt.Println()
}
