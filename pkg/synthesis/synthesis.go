// Package synthesis builds grounded prompts from retrieved passages and
// turns chat-completion output into clean answers, degrading to a textual
// answer when the provider fails.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docqueryco/docquery/pkg/chat"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/utils"
)

const (
	// DefaultTemperature favors focused answers over creative ones.
	DefaultTemperature = 0.2

	// DefaultMaxTokens bounds the generated answer length.
	DefaultMaxTokens = 1024

	// FallbackAnswer is the fixed sentence the model is instructed to
	// emit verbatim when the context cannot answer the question.
	FallbackAnswer = "Based on the provided document sections, I don't have enough specific information to answer this question accurately."

	// RateLimitAnswer is returned as the answer when the provider
	// rejects the request for rate limiting.
	RateLimitAnswer = "Rate limit reached. Please wait 60 seconds."

	// passageDelimiter separates passages in the context block so the
	// model can attribute claims to a region without passages bleeding
	// together.
	passageDelimiter = "\n\n---\n\n"

	// errorPreviewLen is how much of a provider error message makes it
	// into a degraded answer.
	errorPreviewLen = 100
)

// Synthesizer invokes a chat-completion model with a grounded prompt.
type Synthesizer struct {
	client      chat.Client
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// Config holds configuration for the synthesizer.
type Config struct {
	// Temperature overrides DefaultTemperature when non-zero.
	Temperature float64

	// MaxTokens overrides DefaultMaxTokens when non-zero.
	MaxTokens int

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// NewSynthesizer creates a synthesizer around the given chat client.
func NewSynthesizer(client chat.Client, cfg Config) *Synthesizer {
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synthesizer{
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// BuildContext concatenates passages into a single context block, each
// prefixed with its human-readable page number.
func BuildContext(passages []segment.Chunk) string {
	blocks := make([]string, 0, len(passages))
	for _, p := range passages {
		blocks = append(blocks, fmt.Sprintf("[From Page %d]\n%s", p.SourcePage+1, p.Text))
	}
	return strings.Join(blocks, passageDelimiter)
}

// BuildPrompt assembles the full instruction prompt: role statement, rule
// set, context block, verbatim question, and answer cue.
func BuildPrompt(question string, passages []segment.Chunk) string {
	return fmt.Sprintf(`You are a precise AI assistant answering questions about a document.

CRITICAL RULES:
1. Read the user's question EXACTLY as written
2. Answer ONLY that specific question - do not make up different questions
3. Use ONLY the information from the context below
4. If the context doesn't clearly answer the question, say: %q
5. Be direct and concise

===== DOCUMENT CONTEXT =====
%s
================================

USER'S QUESTION: %s

ANSWER (be direct and accurate):`, FallbackAnswer, BuildContext(passages), question)
}

// Synthesize invokes the chat model with a grounded prompt and returns
// the cleaned answer. Provider failures never surface as errors: a rate
// limit yields RateLimitAnswer and anything else yields a truncated error
// description, so callers always get a well-formed answer to pair with
// the retrieved passages.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, passages []segment.Chunk) string {
	prompt := BuildPrompt(question, passages)

	raw, err := s.client.Complete(ctx, chat.CompletionRequest{
		Prompt:      prompt,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return s.degrade(err)
	}

	return CleanAnswer(raw)
}

// degrade folds a provider failure into a textual answer.
func (s *Synthesizer) degrade(err error) string {
	if chat.Classify(err) == chat.KindRateLimited {
		s.logger.Warn("chat provider rate limited", zap.Error(err))
		return RateLimitAnswer
	}

	s.logger.Warn("chat provider failed", zap.Error(err))
	return "Error: " + utils.Truncate(err.Error(), errorPreviewLen)
}

// CleanAnswer strips surrounding whitespace and the stray leading colon
// some models emit before the answer text.
func CleanAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	if strings.HasPrefix(answer, ":") {
		answer = strings.TrimSpace(answer[1:])
	}
	return answer
}
