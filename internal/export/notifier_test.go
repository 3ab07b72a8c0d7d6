package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventexport/internal/constants"
)

func TestEventProducer_PublishCompleted(t *testing.T) {
	producer := &fakeProducer{}
	n := NewEventProducer(producer, "exports.completed")

	ev := CompletedEvent{
		ExportID:    "exp_1",
		WorkspaceID: "ws_1",
		EventType:   "click",
		Columns:     []string{"url"},
		Rows:        3,
		CompletedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, n.PublishCompleted(context.Background(), ev))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "exports.completed", producer.topic)
	assert.Equal(t, MessageTypeExportCompleted, msg.Type)
	assert.Equal(t, constants.ServiceName, msg.Source)
	assert.NotEmpty(t, msg.ID)

	var decoded CompletedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestEventProducer_Disabled(t *testing.T) {
	assert.NoError(t, NewEventProducer(nil, "exports.completed").PublishCompleted(context.Background(), CompletedEvent{}))

	producer := &fakeProducer{}
	assert.NoError(t, NewEventProducer(producer, "").PublishCompleted(context.Background(), CompletedEvent{}))
	assert.Empty(t, producer.messages)
}

func TestEventProducer_PropagatesError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	err := NewEventProducer(producer, "exports.completed").PublishCompleted(context.Background(), CompletedEvent{})
	assert.EqualError(t, err, "broker unavailable")
}
