package generator

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
	err     error
}

func (f fakeKB) ListKnowledge(ctx context.Context) ([]models.KnowledgeEntry, error) {
	return f.entries, f.err
}

type fakeCompleter struct {
	reply    string
	err      error
	system   string
	messages []llm.Message
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, messages []llm.Message, maxTokens int) (*llm.Completion, error) {
	f.calls++
	f.system = system
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.reply, Model: "test-model", Usage: llm.Usage{InputTokens: 10, OutputTokens: 4}}, nil
}

func TestRun_AssemblesAndCompletes(t *testing.T) {
	kb := fakeKB{entries: []models.KnowledgeEntry{entry("basics", "name", "Acme")}}
	llmFake := &fakeCompleter{reply: "Dear Jo,\n...\nAcme Support"}
	g := New(kb, llmFake, 1024, discardLogger())

	resp, err := g.Run(context.Background(), Request{
		SystemPrompt: "You are Acme support.",
		UserPrompt:   "Write a reply.",
		EmailThread:  "Where is my parcel?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Response != "Dear Jo,\n...\nAcme Support" {
		t.Errorf("unexpected response %q", resp.Response)
	}
	if resp.Model != "test-model" || resp.Usage.OutputTokens != 4 {
		t.Errorf("unexpected metadata %+v", resp)
	}
	if !strings.Contains(llmFake.system, "- **name**: Acme") {
		t.Errorf("expected knowledge in system prompt, got %q", llmFake.system)
	}
	if len(llmFake.messages) != 1 || !strings.HasSuffix(llmFake.messages[0].Content, "Email Thread:\nWhere is my parcel?") {
		t.Errorf("unexpected messages %+v", llmFake.messages)
	}
}

func TestRun_PropagatesCompletionError(t *testing.T) {
	upstream := errors.New("rate limited")
	g := New(fakeKB{}, &fakeCompleter{err: upstream}, 1024, discardLogger())

	_, err := g.Run(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u", EmailThread: "t"})
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error to propagate, got %v", err)
	}
}

func TestRun_KnowledgeLoadError(t *testing.T) {
	llmFake := &fakeCompleter{reply: "x"}
	g := New(fakeKB{err: errors.New("db down")}, llmFake, 1024, discardLogger())

	if _, err := g.Run(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u", EmailThread: "t"}); err == nil {
		t.Fatal("expected error")
	}
	if llmFake.calls != 0 {
		t.Error("expected no completion call when knowledge load fails")
	}
}

func TestRequest_Missing(t *testing.T) {
	got := Request{UserPrompt: "u"}.Missing()
	if strings.Join(got, ",") != "systemPrompt,emailThread" {
		t.Errorf("unexpected missing fields %v", got)
	}
	if len((Request{SystemPrompt: "s", UserPrompt: "u", EmailThread: "t"}).Missing()) != 0 {
		t.Error("expected no missing fields")
	}
}
