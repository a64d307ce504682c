package outbox

import (
	"context"
	"time"
)

// Repository stores spooled messages.
type Repository interface {
	// Save spools msg and sets its ID. Saving an event id twice is a no-op.
	Save(ctx context.Context, msg *Message) error

	// Pending returns live messages due at now, oldest first.
	Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	// MarkPublished removes a delivered message.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a failed attempt and schedules the next one.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error

	// MarkDead stops retrying a message.
	MarkDead(ctx context.Context, id int64, reason string) error

	// Counts returns the number of live and dead messages.
	Counts(ctx context.Context) (pending, dead int, err error)
}
