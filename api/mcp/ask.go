package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/engine"
	"github.com/docqueryco/docquery/pkg/segment"
)

var (
	askToolName    = "ask"
	askDescription = "Ask a question about the currently loaded document. Returns a grounded answer together with the cited document passages and their page numbers."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the loaded document"`
}

// AskSource is one cited passage, with a one-based page number.
type AskSource struct {
	Page    int    `json:"page"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []AskSource `json:"sources"`
	Count    int         `json:"count"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ask request",
		zap.String("question", input.Question),
	)

	resp, err := s.config.Engine.Query(ctx, input.Question)
	if err != nil {
		if errors.Is(err, engine.ErrNoDocument) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: "No document is loaded. Process a document before asking questions."},
				},
			}, AskOutput{}, nil
		}

		logger.Error("failed to answer question", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer question: %v", err)},
			},
		}, AskOutput{}, nil
	}

	output := AskOutput{
		Question: input.Question,
		Answer:   resp.Answer,
		Sources:  buildAskSources(resp.Sources),
		Count:    len(resp.Sources),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ask output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

// buildAskSources converts retrieved chunks into cited sources.
func buildAskSources(chunks []segment.Chunk) []AskSource {
	sources := make([]AskSource, len(chunks))
	for i, chunk := range chunks {
		sources[i] = AskSource{
			Page:    chunk.SourcePage + 1,
			Ordinal: chunk.Ordinal,
			Text:    chunk.Text,
		}
	}
	return sources
}
