package suggest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/csopt/internal/llm"
	"github.com/MikeSquared-Agency/csopt/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeKB struct {
	entries []models.KnowledgeEntry
}

func (f fakeKB) ListKnowledge(ctx context.Context) ([]models.KnowledgeEntry, error) {
	return f.entries, nil
}

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, messages []llm.Message, maxTokens int) (*llm.Completion, error) {
	f.system = system
	if len(messages) > 0 {
		f.user = messages[0].Content
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.reply}, nil
}

func lowScoreRequest() Request {
	return Request{
		EmailThread:   "I want a refund NOW",
		AgentResponse: "Thanks for reaching out!",
		Evaluation: &models.Evaluation{
			Score:     35,
			Reasoning: "Did not escalate the refund.",
			RuleChecks: map[string]models.RuleCheck{
				"Escalation on Refund Keywords": {Passed: false, Reasoning: "Refund mentioned, no escalation."},
				"Appropriate Tone":              {Passed: true, Reasoning: "Polite."},
			},
		},
	}
}

func TestSuggest_ParsesFencedReply(t *testing.T) {
	kb := fakeKB{entries: []models.KnowledgeEntry{
		{Category: "refund_handling", Key: "window", Value: "30 days"},
	}}
	llmFake := &fakeCompleter{reply: "Analysis below.\n```json\n" + `{
		"suggestions": [
			{"id": "sug_abc", "type": "add_to_existing", "stepTitle": "Refund Handling", "stepCategory": "refund_handling",
			 "questionTitle": "Escalate refunds", "questionValue": "Always escalate refund requests to a human.",
			 "reasoning": "Rule failed", "priority": "high", "ruleViolated": "Escalation on Refund Keywords"}
		],
		"summary": "Add an escalation rule."
	}` + "\n```"}

	s := New(kb, llmFake, 2048, discardLogger())
	got, err := s.Suggest(context.Background(), lowScoreRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got.Suggestions))
	}
	if got.Suggestions[0].ID != "sug_abc" || got.Suggestions[0].Priority != "high" {
		t.Errorf("unexpected suggestion %+v", got.Suggestions[0])
	}
	if got.Summary != "Add an escalation rule." {
		t.Errorf("unexpected summary %q", got.Summary)
	}

	if !strings.Contains(llmFake.system, "- refund_handling") || !strings.Contains(llmFake.system, "- **window**: 30 days") {
		t.Errorf("expected existing categories in system prompt, got %q", llmFake.system)
	}
	if !strings.Contains(llmFake.user, "**Score**: 35/100") {
		t.Errorf("expected score in user prompt, got %q", llmFake.user)
	}
	if !strings.Contains(llmFake.user, "- **Escalation on Refund Keywords**: ❌ FAILED - Refund mentioned, no escalation.") {
		t.Errorf("expected failed check in user prompt, got %q", llmFake.user)
	}
}

func TestSuggest_InvalidJSONDegrades(t *testing.T) {
	llmFake := &fakeCompleter{reply: "I think you should add a refund policy. {not json"}
	s := New(fakeKB{}, llmFake, 2048, discardLogger())

	got, err := s.Suggest(context.Background(), lowScoreRequest())
	if err != nil {
		t.Fatalf("expected soft degrade, got error %v", err)
	}
	if got.Suggestions == nil || len(got.Suggestions) != 0 {
		t.Errorf("expected empty non-nil suggestions, got %+v", got.Suggestions)
	}
	if got.Summary != "Unable to generate suggestions at this time." {
		t.Errorf("unexpected summary %q", got.Summary)
	}
}

func TestSuggest_CompletionErrorPropagates(t *testing.T) {
	upstream := errors.New("connection reset")
	s := New(fakeKB{}, &fakeCompleter{err: upstream}, 2048, discardLogger())

	_, err := s.Suggest(context.Background(), lowScoreRequest())
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSuggest_CapsAndNormalizes(t *testing.T) {
	reply := `{"suggestions": [
		{"type": "weird", "stepTitle": "Order Lookups", "questionTitle": "a", "questionValue": "1", "priority": "urgent"},
		{"type": "new_step", "stepTitle": "Shipping  Delays", "questionTitle": "b", "questionValue": "2", "priority": "low"},
		{"type": "add_to_existing", "stepTitle": "x", "questionTitle": "", "questionValue": "skipped"},
		{"type": "add_to_existing", "stepTitle": "x", "questionTitle": "c", "questionValue": "3"},
		{"type": "add_to_existing", "stepTitle": "x", "questionTitle": "d", "questionValue": "4"}
	], "summary": "many"}`

	s := New(fakeKB{}, &fakeCompleter{reply: reply}, 2048, discardLogger())
	got, err := s.Suggest(context.Background(), lowScoreRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Suggestions) != MaxSuggestions {
		t.Fatalf("expected %d suggestions, got %d", MaxSuggestions, len(got.Suggestions))
	}

	first := got.Suggestions[0]
	if first.Type != models.SuggestionAddToExisting {
		t.Errorf("expected unknown type to default to add_to_existing, got %q", first.Type)
	}
	if first.Priority != "medium" {
		t.Errorf("expected unknown priority to default to medium, got %q", first.Priority)
	}
	if !strings.HasPrefix(first.ID, "sug_") {
		t.Errorf("expected generated sug_ id, got %q", first.ID)
	}
	if first.StepCategory != "order_lookups" {
		t.Errorf("expected derived category, got %q", first.StepCategory)
	}
	if got.Suggestions[1].StepCategory != "shipping_delays" || got.Suggestions[1].Type != models.SuggestionNewStep {
		t.Errorf("unexpected second suggestion %+v", got.Suggestions[1])
	}
	if got.Suggestions[2].QuestionTitle != "c" {
		t.Errorf("expected blank suggestion to be skipped, got %+v", got.Suggestions[2])
	}
}

func TestSuggest_HighScoreKeepsOne(t *testing.T) {
	reply := `{"suggestions": [
		{"type": "add_to_existing", "stepTitle": "x", "questionTitle": "a", "questionValue": "1"},
		{"type": "add_to_existing", "stepTitle": "x", "questionTitle": "b", "questionValue": "2"}
	], "summary": "minor"}`

	req := lowScoreRequest()
	req.Evaluation.Score = 85

	s := New(fakeKB{}, &fakeCompleter{reply: reply}, 2048, discardLogger())
	got, err := s.Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Suggestions) != 1 {
		t.Errorf("expected 1 suggestion for high score, got %d", len(got.Suggestions))
	}
}

func TestRequest_Missing(t *testing.T) {
	got := Request{EmailThread: "t"}.Missing()
	if strings.Join(got, ",") != "agentResponse,evaluation" {
		t.Errorf("unexpected missing fields %v", got)
	}
}

func TestCategorySlug(t *testing.T) {
	for in, want := range map[string]string{
		"Refund Handling":      "refund_handling",
		"  Shipping \t Delays ": "shipping_delays",
		"faq":                  "faq",
	} {
		if got := CategorySlug(in); got != want {
			t.Errorf("CategorySlug(%q) = %q, want %q", in, got, want)
		}
	}
}
