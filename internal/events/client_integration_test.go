//go:build integration

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestIntegration_Publish(t *testing.T) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}

	client, err := NewClient(context.Background(), natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan Envelope, 1)
	sub, err := client.conn.Subscribe("csopt.>", func(msg *nats.Msg) {
		var env Envelope
		json.Unmarshal(msg.Data, &env)
		received <- env
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	if err := client.Publish(SubjectResultSaved, map[string]any{"id": 1}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case env := <-received:
		if env.Subject != SubjectResultSaved {
			t.Errorf("expected subject %s, got %s", SubjectResultSaved, env.Subject)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
