package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/csopt/internal/llm"
	"github.com/MikeSquared-Agency/csopt/internal/models"
)

// KnowledgeReader returns the knowledge base ordered by category, sort_order.
type KnowledgeReader interface {
	ListKnowledge(ctx context.Context) ([]models.KnowledgeEntry, error)
}

type Request struct {
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
	EmailThread  string `json:"emailThread"`
}

// Missing lists the names of required fields that are blank.
func (r Request) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.SystemPrompt) == "" {
		missing = append(missing, "systemPrompt")
	}
	if strings.TrimSpace(r.UserPrompt) == "" {
		missing = append(missing, "userPrompt")
	}
	if strings.TrimSpace(r.EmailThread) == "" {
		missing = append(missing, "emailThread")
	}
	return missing
}

type Response struct {
	Response string    `json:"response"`
	Model    string    `json:"model"`
	Usage    llm.Usage `json:"usage"`
}

// Generator produces a candidate agent reply for an email thread.
type Generator struct {
	kb        KnowledgeReader
	llm       llm.Completer
	maxTokens int
	logger    *slog.Logger
}

func New(kb KnowledgeReader, completer llm.Completer, maxTokens int, logger *slog.Logger) *Generator {
	return &Generator{kb: kb, llm: completer, maxTokens: maxTokens, logger: logger}
}

// Run assembles the prompt from the request and the current knowledge base and
// calls the model once.
func (g *Generator) Run(ctx context.Context, req Request) (*Response, error) {
	kb, err := g.kb.ListKnowledge(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	prompt := Assemble(req.SystemPrompt, req.UserPrompt, req.EmailThread, kb)

	g.logger.Info("generating agent response",
		"knowledge_entries", len(kb),
		"system_len", len(prompt.System),
		"thread_len", len(req.EmailThread),
	)

	completion, err := g.llm.Complete(ctx, prompt.System, []llm.Message{
		{Role: "user", Content: prompt.User},
	}, g.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	g.logger.Info("agent response generated",
		"model", completion.Model,
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
	)

	return &Response{
		Response: completion.Text,
		Model:    completion.Model,
		Usage:    completion.Usage,
	}, nil
}
