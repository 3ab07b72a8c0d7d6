package analytics

import (
	"context"

	"eventexport/internal/config"
	"eventexport/pkg/circuitbreaker"
)

const breakerName = "postgres-events"

type CircuitBreakerSource struct {
	source Source
	cb     *circuitbreaker.Wrapper
}

func NewCircuitBreakerSource(source Source, cfg config.CircuitBreakerConfig) *CircuitBreakerSource {
	if !cfg.Enabled {
		return &CircuitBreakerSource{source: source}
	}

	cbConfig := circuitbreaker.DefaultConfig(breakerName)
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = circuitbreaker.RatioTrip(cfg.MinRequests, cfg.FailureRatio)
	}

	return &CircuitBreakerSource{
		source: source,
		cb:     circuitbreaker.NewWrapper(cbConfig),
	}
}

func (s *CircuitBreakerSource) FetchEvents(ctx context.Context, f Filter) ([]EventRecord, error) {
	if s.cb == nil {
		return s.source.FetchEvents(ctx, f)
	}
	return circuitbreaker.Do(ctx, s.cb, func() ([]EventRecord, error) {
		return s.source.FetchEvents(ctx, f)
	})
}

func (s *CircuitBreakerSource) State() string {
	if s.cb == nil {
		return "disabled"
	}
	return s.cb.State().String()
}

func (s *CircuitBreakerSource) IsOpen() bool {
	if s.cb == nil {
		return false
	}
	return s.cb.IsOpen()
}
