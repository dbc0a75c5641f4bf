package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectPromptActivated  = "csopt.prompt.activated"
	SubjectKnowledgeApplied = "csopt.knowledge.applied"
	SubjectResultSaved      = "csopt.result.saved"
)

// Publisher emits domain events. Publishing is best-effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(subject string, data any) error
}

// Envelope wraps every published payload.
type Envelope struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Nop discards events. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("csopt"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := Marshal(subject, data)
	if err != nil {
		return err
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// Marshal encodes data in an Envelope.
func Marshal(subject string, data any) ([]byte, error) {
	payload, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return payload, nil
}
