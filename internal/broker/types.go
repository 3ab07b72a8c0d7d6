package broker

import (
	"context"
	"encoding/json"
	"time"
)

// Message is the envelope written to every topic.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	TraceID   string          `json:"trace_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type Producer interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Close() error
}
