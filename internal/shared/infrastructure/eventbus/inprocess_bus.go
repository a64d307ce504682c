package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Handler receives events published on the in-process bus.
type Handler interface {
	// RoutingKeys returns the keys this handler subscribes to. "#" matches
	// every key.
	RoutingKeys() []string

	// Handle processes one event.
	Handle(ctx context.Context, env *Envelope) error
}

// InProcessBus dispatches published events synchronously to registered
// handlers. It stands in for RabbitMQ when no broker is configured.
type InProcessBus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewInProcessBus creates an empty bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers h for its routing keys.
func (b *InProcessBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, key := range h.RoutingKeys() {
		b.handlers[key] = append(b.handlers[key], h)
	}
}

// Publish decodes payload as an Envelope and hands it to every matching
// handler. Handler failures are logged, never returned.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}

	b.mu.RLock()
	targets := append(append([]Handler(nil), b.handlers[env.RoutingKey]...), b.handlers["#"]...)
	b.mu.RUnlock()

	if len(targets) == 0 {
		b.logger.Debug("no handlers for event", "routing_key", env.RoutingKey)
		return nil
	}

	for _, h := range targets {
		if err := h.Handle(ctx, env); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
				"error", err,
			)
		}
	}
	return nil
}

// HandlerCount returns the number of registered subscriptions.
func (b *InProcessBus) HandlerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, hs := range b.handlers {
		count += len(hs)
	}
	return count
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}

var (
	_ Publisher = (*InProcessBus)(nil)
	_ Publisher = (*NoopPublisher)(nil)
	_ Publisher = (*RabbitMQPublisher)(nil)
)
