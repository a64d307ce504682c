package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/database"
)

// timeLayout sorts lexically, so due times compare as text.
const timeLayout = "2006-01-02 15:04:05.000000"

// SQLRepository implements Repository on the spool database.
type SQLRepository struct {
	exec database.Executor
}

// NewSQLRepository creates an outbox repository.
func NewSQLRepository(exec database.Executor) *SQLRepository {
	return &SQLRepository{exec: exec}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.ParseInLocation(timeLayout, s.String, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Save implements Repository.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	_, err := r.exec.Exec(ctx, `
		INSERT INTO outbox (event_id, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`,
		msg.EventID.String(), msg.RoutingKey, string(msg.Payload), formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("spool event %s: %w", msg.EventID, err)
	}
	return r.exec.QueryRow(ctx, `SELECT id FROM outbox WHERE event_id = ?`, msg.EventID.String()).Scan(&msg.ID)
}

// Pending implements Repository.
func (r *SQLRepository) Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.exec.Query(ctx, `
		SELECT id, event_id, routing_key, payload, created_at, retry_count, next_retry_at, last_error
		FROM outbox
		WHERE dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`,
		formatTime(now), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var (
			msg       Message
			eventID   string
			payload   string
			createdAt string
			nextRetry sql.NullString
			lastError sql.NullString
		)
		if err := rows.Scan(&msg.ID, &eventID, &msg.RoutingKey, &payload, &createdAt, &msg.RetryCount, &nextRetry, &lastError); err != nil {
			return nil, err
		}
		if msg.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("outbox message %d: %w", msg.ID, err)
		}
		created, err := time.ParseInLocation(timeLayout, createdAt, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("outbox message %d: %w", msg.ID, err)
		}
		msg.CreatedAt = created
		if msg.NextRetryAt, err = parseTime(nextRetry); err != nil {
			return nil, fmt.Errorf("outbox message %d: %w", msg.ID, err)
		}
		msg.Payload = []byte(payload)
		msg.LastError = lastError.String
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// MarkPublished implements Repository.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.exec.Exec(ctx, `DELETE FROM outbox WHERE id = ?`, id)
	return err
}

// MarkFailed implements Repository.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.exec.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`,
		errMsg, formatTime(nextRetryAt), id,
	)
	return err
}

// MarkDead implements Repository.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.exec.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?
		WHERE id = ?`,
		reason, formatTime(time.Now()), id,
	)
	return err
}

// Counts implements Repository.
func (r *SQLRepository) Counts(ctx context.Context) (pending, dead int, err error) {
	err = r.exec.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN dead_lettered_at IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dead_lettered_at IS NULL THEN 0 ELSE 1 END), 0)
		FROM outbox`,
	).Scan(&pending, &dead)
	return pending, dead, err
}
