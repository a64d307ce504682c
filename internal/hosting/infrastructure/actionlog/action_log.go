// Package actionlog submits action log entries through the event bus.
package actionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/hosting/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
	"github.com/kolabsys/phlesk/pkg/observability"
)

// Publisher implements domain.ActionLog on an eventbus.Publisher.
type Publisher struct {
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewPublisher creates an action log backed by publisher.
func NewPublisher(publisher eventbus.Publisher, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{publisher: publisher, logger: logger}
}

// Submit publishes entry under its routing key.
func (p *Publisher) Submit(ctx context.Context, entry domain.ActionLogEntry) error {
	env, err := eventbus.NewEnvelope(entry.RoutingKey(), entry)
	if err != nil {
		return fmt.Errorf("encode action log entry: %w", err)
	}
	env.CorrelationID = observability.CorrelationIDFromContext(ctx)

	p.logger.Debug("triggering event", "action", entry.Action, "object_id", entry.ObjectID)
	if err := eventbus.PublishEnvelope(ctx, p.publisher, env); err != nil {
		return fmt.Errorf("submit %s: %w", entry.Action, err)
	}
	return nil
}

// Recorder logs every action log entry seen on an in-process bus and
// keeps the last entries in memory.
type Recorder struct {
	logger  *slog.Logger
	limit   int
	entries []domain.ActionLogEntry
}

// NewRecorder creates a recorder keeping up to limit entries.
func NewRecorder(limit int, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger, limit: limit}
}

// RoutingKeys implements eventbus.Handler.
func (r *Recorder) RoutingKeys() []string {
	return []string{"#"}
}

// Handle implements eventbus.Handler.
func (r *Recorder) Handle(ctx context.Context, env *eventbus.Envelope) error {
	var entry domain.ActionLogEntry
	if err := json.Unmarshal(env.Payload, &entry); err != nil {
		return fmt.Errorf("decode action log entry: %w", err)
	}

	r.logger.Info("action log",
		"action", entry.Action,
		"module", entry.Module,
		"object_id", entry.ObjectID,
		"old", entry.OldValues,
		"new", entry.NewValues,
	)

	r.entries = append(r.entries, entry)
	if r.limit > 0 && len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
	return nil
}

// Entries returns the recorded entries, oldest first.
func (r *Recorder) Entries() []domain.ActionLogEntry {
	return append([]domain.ActionLogEntry(nil), r.entries...)
}

var (
	_ domain.ActionLog = (*Publisher)(nil)
	_ eventbus.Handler = (*Recorder)(nil)
)
