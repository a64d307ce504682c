package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
	"github.com/kolabsys/phlesk/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the replay settings used by the CLI.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     5 * time.Second,
		BatchSize:        100,
		MaxRetries:       10,
		RetryBackoffBase: 2 * time.Second,
		RetryBackoffMax:  10 * time.Minute,
	}
}

// Processor replays spooled messages to the broker.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a processor that publishes through publisher.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		stopChan:  make(chan struct{}),
	}
}

// SetMetrics sets the metrics sink.
func (p *Processor) SetMetrics(m observability.Metrics) {
	p.metrics = m
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started", "poll_interval", p.config.PollInterval, "batch_size", p.config.BatchSize)
}

// Stop stops the loop and waits for the current batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning returns true if the processor is running.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.ErrorContext(ctx, "failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce replays one batch and returns how many messages were delivered.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	messages, err := p.repo.Pending(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return 0, err
	}
	p.recordProcessed(messages)

	published := 0
	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.logger.WarnContext(ctx, "failed to replay event",
				"id", msg.ID,
				"event_id", msg.EventID,
				"routing_key", msg.RoutingKey,
				"retry", msg.RetryCount+1,
				"error", err,
			)
			p.fail(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.ErrorContext(ctx, "failed to mark event as published", "id", msg.ID, "error", err)
			continue
		}
		published++
		p.metrics.Counter(observability.MetricOutboxPublished, 1)
		p.statsMu.Lock()
		p.stats.PublishedCount++
		p.statsMu.Unlock()
	}
	return published, nil
}

// Backlog returns the number of spooled and dead-lettered messages.
func (p *Processor) Backlog(ctx context.Context) (pending, dead int, err error) {
	return p.repo.Counts(ctx)
}

func (p *Processor) fail(ctx context.Context, msg *Message, cause error) {
	if p.shouldDeadLetter(msg) {
		p.recordFailure(cause, true)
		p.metrics.Counter(observability.MetricOutboxDead, 1)
		if err := p.repo.MarkDead(ctx, msg.ID, cause.Error()); err != nil {
			p.logger.ErrorContext(ctx, "failed to dead-letter event", "id", msg.ID, "error", err)
		}
		return
	}

	p.recordFailure(cause, false)
	p.metrics.Counter(observability.MetricOutboxFailed, 1)
	next := time.Now().Add(p.retryBackoff(msg.RetryCount + 1))
	if err := p.repo.MarkFailed(ctx, msg.ID, cause.Error(), next); err != nil {
		p.logger.ErrorContext(ctx, "failed to mark event as failed", "id", msg.ID, "error", err)
	}
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

func (p *Processor) retryBackoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	limit := p.config.RetryBackoffMax
	if limit <= 0 {
		limit = time.Minute
	}

	backoff := base
	for i := 1; i < attempt && backoff < limit; i++ {
		backoff *= 2
	}
	return min(backoff, limit)
}

// Stats summarizes processor activity since start.
type Stats struct {
	IsRunning       bool       `json:"running"`
	PublishedCount  uint64     `json:"published"`
	FailedCount     uint64     `json:"failed"`
	DeadCount       uint64     `json:"dead"`
	LagSeconds      float64    `json:"lag_seconds"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorAt     *time.Time `json:"last_error_at,omitempty"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
}

// GetStats returns current processor statistics.
func (p *Processor) GetStats() Stats {
	p.statsMu.Lock()
	stats := p.stats
	p.statsMu.Unlock()

	stats.IsRunning = p.IsRunning()
	return stats
}

func (p *Processor) recordFailure(err error, dead bool) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	if dead {
		p.stats.DeadCount++
	} else {
		p.stats.FailedCount++
	}
	now := time.Now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := time.Now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordProcessed(messages []*Message) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := time.Now()
	p.stats.LastProcessedAt = &now
	if len(messages) == 0 {
		p.stats.LagSeconds = 0
		return
	}

	oldest := messages[0].CreatedAt
	for _, msg := range messages[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	p.stats.LagSeconds = now.Sub(oldest).Seconds()
}
