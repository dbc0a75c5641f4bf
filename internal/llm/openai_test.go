package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "gpt-test" {
			t.Errorf("expected model gpt-test, got %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-test",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "world"},
				},
			},
			"usage": map[string]any{"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12},
		})
	}))
	defer server.Close()

	c := NewOpenAI("sk-test", "gpt-test", server.URL)

	result, err := c.Complete(context.Background(), "system text", []Message{{Role: "user", Content: "hello"}}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "world" {
		t.Errorf("expected 'world', got %q", result.Text)
	}
	if result.Usage.InputTokens != 9 || result.Usage.OutputTokens != 3 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}
}

func TestOpenAIComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-test",
			"choices": []map[string]any{},
		})
	}))
	defer server.Close()

	c := NewOpenAI("sk-test", "gpt-test", server.URL)

	if _, err := c.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, 50); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNew_Providers(t *testing.T) {
	if _, err := New("anthropic", "", "m", ""); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := New("bedrock", "key", "m", ""); err == nil {
		t.Error("expected error for unsupported provider")
	}
	c, err := New("openai", "key", "m", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*OpenAIClient); !ok {
		t.Errorf("expected *OpenAIClient, got %T", c)
	}
	c, err = New("", "key", "m", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*AnthropicClient); !ok {
		t.Errorf("expected *AnthropicClient, got %T", c)
	}
}
