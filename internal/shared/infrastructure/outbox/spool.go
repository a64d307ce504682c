package outbox

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/eventbus"
)

// SpoolingPublisher publishes through a broker and spools what the broker
// refuses.
type SpoolingPublisher struct {
	primary eventbus.Publisher
	repo    Repository
	logger  *slog.Logger
}

// NewSpoolingPublisher wraps primary.
func NewSpoolingPublisher(primary eventbus.Publisher, repo Repository, logger *slog.Logger) *SpoolingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpoolingPublisher{primary: primary, repo: repo, logger: logger}
}

// Publish implements eventbus.Publisher. It fails only when the event can
// be neither published nor spooled.
func (p *SpoolingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	err := p.primary.Publish(ctx, routingKey, payload)
	if err == nil {
		return nil
	}

	msg := NewMessage(routingKey, payload)
	if saveErr := p.repo.Save(ctx, msg); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	p.logger.WarnContext(ctx, "event spooled for replay",
		"routing_key", routingKey,
		"event_id", msg.EventID,
		"error", err,
	)
	return nil
}

// Close closes the broker publisher. The spool stays open for its owner.
func (p *SpoolingPublisher) Close() error {
	return p.primary.Close()
}
