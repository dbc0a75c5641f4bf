package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestMarshal_Envelope(t *testing.T) {
	raw, err := Marshal(SubjectPromptActivated, map[string]any{"id": 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env struct {
		ID      string         `json:"id"`
		Subject string         `json:"subject"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		t.Errorf("expected uuid id, got %q", env.ID)
	}
	if env.Subject != "csopt.prompt.activated" {
		t.Errorf("unexpected subject %q", env.Subject)
	}
	if env.Data["id"] != float64(7) {
		t.Errorf("unexpected data %v", env.Data)
	}
}

func TestMarshal_Unencodable(t *testing.T) {
	if _, err := Marshal("x", make(chan int)); err == nil {
		t.Fatal("expected error for unencodable payload")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(SubjectResultSaved, nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
