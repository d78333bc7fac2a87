// Package groq implements pkg/chat's Client on Groq's OpenAI-compatible
// chat completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/docqueryco/docquery/pkg/chat"
)

const (
	// DefaultModel is the default chat completion model.
	DefaultModel = "llama-3.3-70b-versatile"

	// DefaultBaseURL is the Groq API URL.
	DefaultBaseURL = "https://api.groq.com/openai"

	providerName = "groq"
)

// Client wraps Groq's chat completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// ClientConfig holds configuration for the Groq client.
type ClientConfig struct {
	// APIKey is the Groq API key. Falls back to the GROQ_API_KEY
	// environment variable if empty.
	APIKey string

	// Model is the chat model. Defaults to DefaultModel if empty.
	Model string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each completion request. Defaults to 60s if zero.
	Timeout time.Duration
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates a Groq chat completion client. A missing API key is a
// configuration error, surfaced immediately rather than on first use.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Complete invokes the chat completions endpoint with a single user
// message and returns the generated text.
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &chat.ProviderError{
			Kind:     chat.KindOther,
			Provider: providerName,
			Message:  err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &chat.ProviderError{
			Kind:     chat.KindRateLimited,
			Provider: providerName,
			Message:  fmt.Sprintf("rate limited (status 429): %s", string(body)),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &chat.ProviderError{
			Kind:     chat.KindOther,
			Provider: providerName,
			Message:  fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if result.Error != nil {
		return "", &chat.ProviderError{
			Kind:     chat.KindOther,
			Provider: providerName,
			Message:  result.Error.Message,
		}
	}

	if len(result.Choices) == 0 {
		return "", &chat.ProviderError{
			Kind:     chat.KindOther,
			Provider: providerName,
			Message:  "no choices returned",
		}
	}

	return result.Choices[0].Message.Content, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

var _ chat.Client = (*Client)(nil)
