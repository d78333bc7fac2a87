package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/engine"
)

// Engine is the slice of the question-answering engine the handlers need.
// Injected as an interface so handler tests can substitute fakes.
type Engine interface {
	ProcessDocument(ctx context.Context, path string) (int, error)
	Query(ctx context.Context, question string) (*engine.Response, error)
	HasDocument() bool
}

// Server is the API server fronting a single document-QA engine.
type Server struct {
	config Config
	engine Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The engine is injected to allow sharing with other surfaces
// (e.g., the MCP handler when served from the same process).
func NewServer(config Config, eng Engine, logger *zap.Logger) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: eng,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/documents", s.handleProcessDocument)
	app.Post("/v1/query", s.handleQuery)

	return s, nil
}

// Mount attaches an extra net/http handler at the given path. Used to
// serve the MCP endpoint from the same listener as the REST routes.
func (s *Server) Mount(path string, h http.Handler) {
	s.app.All(path, adaptor.HTTPHandler(h))
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
