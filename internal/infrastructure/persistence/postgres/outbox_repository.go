package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/jackc/pgx/v5"
)

type OutboxRepository struct {
	q Executor
}

func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{q: db.Pool}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, msg application.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = newID()
	}

	query := `
		INSERT INTO outbox (id, aggregate_id, routing_key, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.Exec(ctx, query, msg.ID, msg.AggregateID, msg.RoutingKey, msg.Payload, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox message: %w", err)
	}
	return nil
}

// FetchUnpublished locks the oldest pending messages. Rows locked by another
// relay are skipped.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]application.OutboxMessage, error) {
	query := `
		SELECT id, aggregate_id, routing_key, payload, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (application.OutboxMessage, error) {
		var m application.OutboxMessage
		err := row.Scan(&m.ID, &m.AggregateID, &m.RoutingKey, &m.Payload, &m.CreatedAt, &m.PublishedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan outbox: %w", err)
	}
	return msgs, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE outbox SET published_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}
