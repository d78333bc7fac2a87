package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/document"
	"github.com/docqueryco/docquery/pkg/engine"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/vector"
)

// ErrorResponse is the JSON body for all non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProcessDocumentRequest is the body of POST /v1/documents.
type ProcessDocumentRequest struct {
	// Path is the server-local path of the document to ingest.
	Path string `json:"path"`
}

// ProcessDocumentResponse reports a successful ingestion.
type ProcessDocumentResponse struct {
	Path   string `json:"path"`
	Chunks int    `json:"chunks"`
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Question string `json:"question"`
}

// SourceDocument is one retrieved passage cited by an answer.
// Page is the one-based page number shown to users.
type SourceDocument struct {
	Page    int    `json:"page"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// QueryResponse carries the answer and the passages it was grounded in.
type QueryResponse struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceDocument `json:"sources"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleProcessDocument ingests a document and replaces the live index.
func (s *Server) handleProcessDocument(c *fiber.Ctx) error {
	var req ProcessDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "path is required"})
	}

	chunks, err := s.engine.ProcessDocument(c.Context(), req.Path)
	if err != nil {
		s.logger.Error("document ingestion failed",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return c.Status(ingestStatus(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(ProcessDocumentResponse{
		Path:   req.Path,
		Chunks: chunks,
	})
}

// handleQuery answers a question against the current document.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	resp, err := s.engine.Query(c.Context(), req.Question)
	if err != nil {
		status := queryStatus(err)
		if status >= fiber.StatusInternalServerError {
			s.logger.Error("query failed",
				zap.String("question", req.Question),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(QueryResponse{
		Question: req.Question,
		Answer:   resp.Answer,
		Sources:  toSourceDocuments(resp.Sources),
	})
}

// ingestStatus maps ingestion errors onto HTTP statuses. Unreadable or
// empty documents are the client's fault; embedding and vector backend
// failures are upstream failures.
func ingestStatus(err error) int {
	switch {
	case errors.Is(err, document.ErrUnreadable), errors.Is(err, vector.ErrEmptyIndex):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, vector.ErrEmbedding), errors.Is(err, vector.ErrConnection):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// queryStatus maps query errors onto HTTP statuses.
func queryStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrEmptyQuestion), errors.Is(err, vector.ErrInvalidK):
		return fiber.StatusBadRequest
	case errors.Is(err, engine.ErrNoDocument):
		return fiber.StatusConflict
	case errors.Is(err, vector.ErrEmbedding), errors.Is(err, vector.ErrConnection):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func toSourceDocuments(chunks []segment.Chunk) []SourceDocument {
	sources := make([]SourceDocument, len(chunks))
	for i, chunk := range chunks {
		sources[i] = SourceDocument{
			Page:    chunk.SourcePage + 1,
			Ordinal: chunk.Ordinal,
			Text:    chunk.Text,
		}
	}
	return sources
}
