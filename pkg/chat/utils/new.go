// Package chatutils is the chat utility package
package chatutils

import (
	"fmt"
	"time"

	"github.com/docqueryco/docquery/pkg/chat"
	"github.com/docqueryco/docquery/pkg/chat/groq"
	"github.com/docqueryco/docquery/pkg/chat/ollama"
)

type NewClientOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Timeout      time.Duration
}

// NewClient creates the chat client for the configured provider. Missing
// credentials for credentialed providers surface here, at construction.
func NewClient(o *NewClientOpts) (chat.Client, error) {
	switch o.ProviderType {
	case "groq", "":
		return groq.NewClient(groq.ClientConfig{
			Model:   o.Model,
			BaseURL: o.TargetURL,
			Timeout: o.Timeout,
		})
	case "ollama":
		return ollama.NewClient(ollama.ClientConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Timeout: o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", o.ProviderType)
	}
}
