package testutils

import (
	"context"

	"github.com/docqueryco/docquery/pkg/chat"
)

// MockChatClient is a scripted chat client for tests.
type MockChatClient struct {
	// Response is returned by Complete when Err is nil.
	Response string

	// Err, when set, is returned by Complete instead of a response.
	Err error

	// Requests records every request Complete received.
	Requests []chat.CompletionRequest
}

func NewMockChatClient(response string) *MockChatClient {
	return &MockChatClient{Response: response}
}

func (m *MockChatClient) Complete(_ context.Context, req chat.CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockChatClient) Close() error {
	return nil
}
