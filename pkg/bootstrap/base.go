package bootstrap

import (
	"context"
	"fmt"

	"eventexport/internal/broker"
	"eventexport/internal/config"
	"eventexport/internal/logger"
)

// Base holds what every command needs: config, logger and the optional
// event producer.
type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the producer when a broker is configured. Without one,
// Producer stays nil and completion events are not published.
func (b *Base) InitBroker(ctx context.Context) error {
	if b.Config.Broker.Type == "" {
		b.Logger.InfowCtx(ctx, "No broker configured, export events disabled")
		return nil
	}

	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}

	b.Producer = producer
	b.Logger.InfowCtx(ctx, "Broker producer initialized", "type", b.Config.Broker.Type)
	return nil
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	return errs
}
