package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/classbook/internal/domain"
)

// WebhookEventRepository enforces at-most-once processing via the primary
// key on the gateway event id. Inside a transaction a concurrent insert of
// the same id blocks until the first transaction ends.
type WebhookEventRepository struct {
	q Executor
}

func NewWebhookEventRepository(db *DB) *WebhookEventRepository {
	return &WebhookEventRepository{q: db.Pool}
}

func (r *WebhookEventRepository) Record(ctx context.Context, eventID, eventType string, receivedAt time.Time) error {
	query := `INSERT INTO webhook_events (id, event_type, received_at) VALUES ($1, $2, $3)`

	_, err := r.q.Exec(ctx, query, eventID, eventType, receivedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateEventError(eventID)
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, eventID string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE webhook_events SET processed_at = $1 WHERE id = $2`, at, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}
