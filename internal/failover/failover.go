package failover

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/attempt"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/metrics"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
)

type Controller struct {
	executor  *attempt.Executor
	logger    *slog.Logger
	collector *metrics.Collector
}

func NewController(executor *attempt.Executor, logger *slog.Logger, collector *metrics.Collector) *Controller {
	return &Controller{
		executor:  executor,
		logger:    logger,
		collector: collector,
	}
}

// Route drains the pool until an attempt succeeds or no origins remain.
// A pool of size N produces at most N attempts, each against a distinct
// origin, strictly one at a time. On success the winning outcome is
// returned with its response body still open; the caller consumes it and
// calls Close. On exhaustion the error is origin.ErrPoolExhausted; if the
// inbound context dies mid-loop the context's error is returned instead.
func (c *Controller) Route(ctx context.Context, pool *origin.Pool, inbound *http.Request, body []byte) (*attempt.Outcome, error) {
	for {
		org, err := pool.Next()
		if err != nil {
			return nil, err
		}

		outcome := c.executor.Do(ctx, org, inbound, body)

		if outcome.Kind == attempt.KindSuccess {
			c.logger.Info("Origin responded",
				slog.String("origin", org.Host),
				slog.Int("status", outcome.StatusCode),
				slog.Duration("elapsed", outcome.Elapsed),
				slog.Int("untried", pool.Len()))

			c.collector.Emit(metrics.MetricEvent{
				Type:      metrics.EventAttemptSucceeded,
				Timestamp: time.Now(),
				Origin:    org.Host,
				Duration:  outcome.Elapsed,
			})

			return outcome, nil
		}

		c.logFailure(outcome)

		c.collector.Emit(metrics.MetricEvent{
			Type:       metrics.EventAttemptFailed,
			Timestamp:  time.Now(),
			Origin:     org.Host,
			Reason:     outcome.Kind.String(),
			Duration:   outcome.Elapsed,
			StatusCode: outcome.StatusCode,
		})

		// A dead inbound context fails every remaining attempt before it
		// starts; stop instead of burning through the rest of the pool.
		if ctx.Err() != nil {
			c.logger.Info("Inbound request canceled, abandoning failover",
				slog.String("origin", org.Host),
				slog.Int("untried", pool.Len()))
			return nil, ctx.Err()
		}

		// No backoff: the next origin is tried immediately.
	}
}

func (c *Controller) logFailure(outcome *attempt.Outcome) {
	attrs := []any{
		slog.String("origin", outcome.Origin.Host),
		slog.String("reason", outcome.Kind.String()),
		slog.Duration("elapsed", outcome.Elapsed),
	}

	if outcome.Kind == attempt.KindBadStatus {
		attrs = append(attrs, slog.Int("status", outcome.StatusCode))
	}
	if outcome.Err != nil {
		attrs = append(attrs, slog.Any("err", outcome.Err))
	}

	c.logger.Warn("Origin attempt failed, trying next", attrs...)
}
