package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/csopt/internal/extractor"
	"github.com/MikeSquared-Agency/csopt/internal/generator"
	"github.com/MikeSquared-Agency/csopt/internal/llm"
	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const (
	// MaxSuggestions caps the suggestions returned for one evaluation.
	MaxSuggestions = 3
	// HighScore is the score at or above which at most one suggestion is kept.
	HighScore = 80

	FallbackSummary = "Unable to generate suggestions at this time."
)

type Request struct {
	EmailThread   string             `json:"emailThread"`
	AgentResponse string             `json:"agentResponse"`
	Evaluation    *models.Evaluation `json:"evaluation"`
}

// Missing lists the names of required fields that are blank.
func (r Request) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.EmailThread) == "" {
		missing = append(missing, "emailThread")
	}
	if strings.TrimSpace(r.AgentResponse) == "" {
		missing = append(missing, "agentResponse")
	}
	if r.Evaluation == nil {
		missing = append(missing, "evaluation")
	}
	return missing
}

type Suggester struct {
	kb        generator.KnowledgeReader
	llm       llm.Completer
	maxTokens int
	logger    *slog.Logger
}

func New(kb generator.KnowledgeReader, completer llm.Completer, maxTokens int, logger *slog.Logger) *Suggester {
	return &Suggester{kb: kb, llm: completer, maxTokens: maxTokens, logger: logger}
}

// Suggest asks the model for knowledge-base additions that would have prevented
// the failures in req.Evaluation. An unparseable reply yields an empty set
// with FallbackSummary rather than an error.
func (s *Suggester) Suggest(ctx context.Context, req Request) (*models.SuggestionSet, error) {
	kb, err := s.kb.ListKnowledge(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	system := BuildSystemPrompt(kb)
	user := BuildUserPrompt(req)

	s.logger.Info("generating suggestions",
		"score", req.Evaluation.Score,
		"rule_checks", len(req.Evaluation.RuleChecks),
		"knowledge_entries", len(kb),
	)

	completion, err := s.llm.Complete(ctx, system, []llm.Message{
		{Role: "user", Content: user},
	}, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm suggestions: %w", err)
	}

	var set models.SuggestionSet
	if err := extractor.Decode(completion.Text, &set); err != nil {
		s.logger.Warn("failed to parse suggestions response",
			"error", err,
			"raw", completion.Text,
		)
		return &models.SuggestionSet{Suggestions: []models.Suggestion{}, Summary: FallbackSummary}, nil
	}

	set.Suggestions = normalize(set.Suggestions, limitFor(req.Evaluation.Score))

	s.logger.Info("suggestions generated", "count", len(set.Suggestions))
	return &set, nil
}

func limitFor(score int) int {
	if score >= HighScore {
		return 1
	}
	return MaxSuggestions
}

func normalize(in []models.Suggestion, limit int) []models.Suggestion {
	out := make([]models.Suggestion, 0, limit)
	for _, sg := range in {
		if len(out) == limit {
			break
		}
		if strings.TrimSpace(sg.QuestionTitle) == "" || strings.TrimSpace(sg.QuestionValue) == "" {
			continue
		}
		if sg.ID == "" {
			sg.ID = "sug_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		}
		if sg.Type != models.SuggestionNewStep {
			sg.Type = models.SuggestionAddToExisting
		}
		switch sg.Priority {
		case "high", "medium", "low":
		default:
			sg.Priority = "medium"
		}
		if sg.StepCategory == "" {
			sg.StepCategory = CategorySlug(sg.StepTitle)
		}
		out = append(out, sg)
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// CategorySlug derives a category key from a step title: "Refund Handling" -> "refund_handling".
func CategorySlug(title string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "_")
}

// BuildSystemPrompt describes the existing categories and their entries.
func BuildSystemPrompt(kb []models.KnowledgeEntry) string {
	groups := generator.GroupByCategory(kb)

	cats := make([]string, 0, len(groups))
	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		cats = append(cats, "- "+g.Category)
		lines := make([]string, 0, len(g.Entries))
		for _, e := range g.Entries {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", e.Key, e.Value))
		}
		blocks = append(blocks, "### "+g.Category+"\n"+strings.Join(lines, "\n"))
	}

	return fmt.Sprintf(systemPromptIntro, strings.Join(cats, "\n"), strings.Join(blocks, "\n\n"))
}

func BuildUserPrompt(req Request) string {
	names := make([]string, 0, len(req.Evaluation.RuleChecks))
	for name := range req.Evaluation.RuleChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make([]string, 0, len(names))
	for _, name := range names {
		c := req.Evaluation.RuleChecks[name]
		verdict := "❌ FAILED"
		if c.Passed {
			verdict = "✅ PASSED"
		}
		checks = append(checks, fmt.Sprintf("- **%s**: %s - %s", name, verdict, c.Reasoning))
	}

	return fmt.Sprintf(userPromptTemplate,
		req.Evaluation.Score,
		req.Evaluation.Reasoning,
		strings.Join(checks, "\n"),
		req.EmailThread,
		req.AgentResponse,
	)
}
