package observability

import (
	"context"
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to a logger and metrics.
type Timer struct {
	start    time.Time
	total    string
	duration string
	failures string
	logger   *slog.Logger
	metrics  Metrics
	tags     []Tag
}

// StartTimer starts timing. The metric names are the total counter, the
// duration timing and the failure counter of the operation.
func StartTimer(total, duration, failures string) *Timer {
	return &Timer{
		start:    time.Now(),
		total:    total,
		duration: duration,
		failures: failures,
	}
}

// WithLogger adds a logger that receives a debug line on stop.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics adds a metrics collector to the timer.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags adds tags to the timer for metrics labeling.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records the duration; failed marks the operation as failed.
func (t *Timer) Stop(ctx context.Context, failed bool) time.Duration {
	elapsed := time.Since(t.start)

	if t.logger != nil {
		t.logger.DebugContext(ctx, "operation timed",
			"metric", t.duration,
			"duration_ms", elapsed.Milliseconds(),
			"failed", failed,
		)
	}

	if t.metrics != nil {
		t.metrics.Counter(t.total, 1, t.tags...)
		t.metrics.Timing(t.duration, elapsed, t.tags...)
		if failed {
			t.metrics.Counter(t.failures, 1, t.tags...)
		}
	}

	return elapsed
}
