// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/api"
	"github.com/docqueryco/docquery/api/mcp"
	"github.com/docqueryco/docquery/pkg/config"
	engineutils "github.com/docqueryco/docquery/pkg/engine/utils"
	"github.com/docqueryco/docquery/pkg/logger"
)

const serveLongDesc string = `Run the DocQuery API server.

Serves the REST endpoints for document ingestion and querying, plus an
MCP endpoint at /mcp so agents can ask questions over the loaded
document.

  POST /v1/documents   Ingest a document
  POST /v1/query       Ask a question
  GET  /ping           Health check`

const serveShortDesc string = "Run the DocQuery API server"

type ServeCommander struct {
	listen     string
	disableMCP bool
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("listen") {
				cmder.listen = cfg.API.Listen
			}

			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", defaults.API.Listen, "Address for the API server to listen on")
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	// Create shared engine
	eng, chatClient, err := engineutils.NewEngine(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()
	defer func() { _ = chatClient.Close() }()

	// Create API server
	apiServer, err := api.NewServer(
		api.Config{
			ListenAddr: c.listen,
		},
		eng,
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Mount the MCP endpoint unless disabled
	if !c.disableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Engine: eng,
			Logger: c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		apiServer.Mount("/mcp", mcpServer.Handler())
		c.logger.Info("MCP endpoint enabled", zap.String("path", "/mcp"))
	}

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}
