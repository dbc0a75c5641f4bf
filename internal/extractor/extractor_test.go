package extractor

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "raw json",
			raw:  `{"score": 90}`,
			want: `{"score": 90}`,
		},
		{
			name: "raw json with whitespace",
			raw:  "\n  {\"a\":1}  \n",
			want: `{"a":1}`,
		},
		{
			name: "fenced block with prose",
			raw:  "Here is my evaluation:\n```json\n{\"score\": 40}\n```\nLet me know.",
			want: `{"score": 40}`,
		},
		{
			name: "first fenced block wins",
			raw:  "```json\n{\"a\":1}\n```\n```json\n{\"a\":2}\n```",
			want: `{"a":1}`,
		},
		{
			name:    "prose only",
			raw:     "I could not evaluate this response.",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "broken fenced json",
			raw:     "```json\n{\"score\": \n```",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				if !errors.Is(err, ErrNoJSON) {
					t.Errorf("expected ErrNoJSON, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Extract() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Score int `json:"score"`
	}
	if err := Decode("```json\n{\"score\": 77}\n```", &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Score != 77 {
		t.Errorf("expected score 77, got %d", v.Score)
	}

	if err := Decode(`{"score": "high"}`, &v); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON for type mismatch, got %v", err)
	}
}
