package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 120 * time.Second

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Completion is the generated text plus the provider's usage metadata.
type Completion struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// Completer sends a system prompt and role-tagged messages to a hosted model.
// Implementations do not retry; errors propagate to the caller as-is.
type Completer interface {
	Complete(ctx context.Context, system string, messages []Message, maxTokens int) (*Completion, error)
}

// New builds the Completer for provider ("anthropic" or "openai").
func New(provider, apiKey, model, baseURL string) (Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing api key for provider %q", provider)
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "anthropic":
		return NewAnthropic(apiKey, model, baseURL), nil
	case "openai":
		return NewOpenAI(apiKey, model, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
