package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventexport/internal/broker"
	"eventexport/internal/constants"
	"eventexport/pkg/tracing"
)

const MessageTypeExportCompleted = "export.completed"

// CompletedEvent is published after an export has been encoded.
type CompletedEvent struct {
	ExportID    string    `json:"export_id"`
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	EventType   string    `json:"event_type"`
	Columns     []string  `json:"columns"`
	Interval    string    `json:"interval"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Rows        int       `json:"rows"`
	Truncated   bool      `json:"truncated"`
	SizeBytes   int       `json:"size_bytes"`
	CompletedAt time.Time `json:"completed_at"`
}

type Notifier interface {
	PublishCompleted(ctx context.Context, ev CompletedEvent) error
}

type EventProducer struct {
	producer broker.Producer
	topic    string
}

func NewEventProducer(producer broker.Producer, topic string) *EventProducer {
	return &EventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *EventProducer) PublishCompleted(ctx context.Context, ev CompletedEvent) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal export event: %w", err)
	}

	msg := broker.Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeExportCompleted,
		Source:    constants.ServiceName,
		Timestamp: time.Now().UTC(),
		TraceID:   tracing.TraceID(ctx),
		Payload:   payload,
	}
	return p.producer.Publish(ctx, p.topic, msg)
}
