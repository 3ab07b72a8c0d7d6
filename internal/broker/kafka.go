package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"eventexport/internal/config"
	"eventexport/internal/constants"
	"eventexport/internal/logger"
	"eventexport/pkg/metrics"
	"eventexport/pkg/tracing"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, []kafka.Header{
		{Key: "type", Value: []byte(msg.Type)},
	})

	start := time.Now()
	err = p.writer.WriteMessages(ctx, newKafkaMessage(topic, msg, body, headers))
	metrics.ObserveKafkaWriteDuration(topic, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten(topic)
	metrics.ObserveKafkaMessageSize(topic, len(body))
	p.logger.DebugwCtx(ctx, "Published message",
		"topic", topic,
		"message_id", msg.ID,
		"type", msg.Type,
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// newKafkaMessage keys messages by envelope id.
func newKafkaMessage(topic string, msg Message, body []byte, headers []kafka.Header) kafka.Message {
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.ID),
		Value:   body,
		Headers: headers,
		Time:    msg.Timestamp,
	}
}
