package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived  EventType = "request_received"
	EventAttemptSucceeded EventType = "attempt_succeeded"
	EventAttemptFailed    EventType = "attempt_failed"
	EventPoolExhausted    EventType = "pool_exhausted"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Origin     string
	Reason     string
	Duration   time.Duration
	StatusCode int
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Emit sends an event without blocking; under pressure the event is
// dropped rather than stalling the request path. Nil collectors are
// tolerated so metrics stay optional in tests.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}

	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests()

	case EventAttemptSucceeded:
		c.metrics.RecordSuccess(event.Origin, event.Duration)

	case EventAttemptFailed:
		c.metrics.RecordFailure(event.Origin, event.Reason, event.Duration)

	case EventPoolExhausted:
		c.metrics.IncrementExhausted()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot(policy string) Snapshot {
	return c.metrics.Snapshot(policy)
}
