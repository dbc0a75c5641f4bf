package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/csopt/internal/extractor"
	"github.com/MikeSquared-Agency/csopt/internal/llm"
	"github.com/MikeSquared-Agency/csopt/internal/models"
)

// ErrUnparseable is returned when the evaluator model's reply is not the expected JSON.
var ErrUnparseable = errors.New("unparseable evaluation reply")

// RuleReader lists evaluator rules; all=false returns only active rules
// ordered by priority DESC, name.
type RuleReader interface {
	ListEvaluatorRules(ctx context.Context, all bool) ([]models.EvaluatorRuleWithSource, error)
}

type Request struct {
	EmailThread      string `json:"emailThread"`
	AgentResponse    string `json:"agentResponse"`
	ExpectedBehavior string `json:"expectedBehavior,omitempty"`
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
	return missing
}

type Evaluator struct {
	rules     RuleReader
	llm       llm.Completer
	maxTokens int
	logger    *slog.Logger
}

func New(rules RuleReader, completer llm.Completer, maxTokens int, logger *slog.Logger) *Evaluator {
	return &Evaluator{rules: rules, llm: completer, maxTokens: maxTokens, logger: logger}
}

type reply struct {
	Score      float64                     `json:"score"`
	Reasoning  string                      `json:"reasoning"`
	RuleChecks map[string]models.RuleCheck `json:"ruleChecks"`
}

// Evaluate scores a candidate response against the active rules. A reply that
// cannot be parsed is an error.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*models.Evaluation, error) {
	rules, err := e.rules.ListEvaluatorRules(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load evaluator rules: %w", err)
	}

	system := BuildSystemPrompt(rules)
	user := BuildUserPrompt(req)

	e.logger.Info("evaluating agent response",
		"rules", len(rules),
		"response_len", len(req.AgentResponse),
	)

	completion, err := e.llm.Complete(ctx, system, []llm.Message{
		{Role: "user", Content: user},
	}, e.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm evaluation: %w", err)
	}

	var r reply
	if err := extractor.Decode(completion.Text, &r); err != nil {
		e.logger.Error("failed to parse evaluation response",
			"error", err,
			"raw", completion.Text,
		)
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	eval := &models.Evaluation{
		Score:      clampScore(r.Score),
		Reasoning:  r.Reasoning,
		RuleChecks: r.RuleChecks,
	}
	if eval.RuleChecks == nil {
		eval.RuleChecks = map[string]models.RuleCheck{}
	}

	e.logger.Info("evaluation complete",
		"score", eval.Score,
		"rule_checks", len(eval.RuleChecks),
		"failed", countFailed(eval.RuleChecks),
	)

	return eval, nil
}

// BuildSystemPrompt lists every rule by name with its check prompt.
func BuildSystemPrompt(rules []models.EvaluatorRuleWithSource) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	if len(rules) == 0 {
		b.WriteString(noRulesNote)
	}
	for i, r := range rules {
		fmt.Fprintf(&b, "\n### %d. %s\n", i+1, r.Name)
		if r.Description != nil && *r.Description != "" {
			fmt.Fprintf(&b, "Purpose: %s\n", *r.Description)
		}
		fmt.Fprintf(&b, "Check: %s\n", r.CheckPrompt)
	}
	b.WriteString(outputFormat)
	return b.String()
}

func BuildUserPrompt(req Request) string {
	expected := ""
	if strings.TrimSpace(req.ExpectedBehavior) != "" {
		expected = fmt.Sprintf(expectedBehaviorTemplate, req.ExpectedBehavior)
	}
	return fmt.Sprintf(userPromptTemplate, req.EmailThread, req.AgentResponse, expected)
}

func clampScore(s float64) int {
	n := int(math.Round(s))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func countFailed(checks map[string]models.RuleCheck) int {
	n := 0
	for _, c := range checks {
		if !c.Passed {
			n++
		}
	}
	return n
}
