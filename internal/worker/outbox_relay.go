package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
)

// OutboxRelay forwards committed outbox messages to the broker. Delivery is
// at least once: a message is marked published only after the broker
// accepted it, in the same transaction that locked it.
type OutboxRelay struct {
	uow       application.UnitOfWork
	publisher application.EventPublisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewOutboxRelay(
	uow application.UnitOfWork,
	publisher application.EventPublisher,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		uow:       uow,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (w *OutboxRelay) Start(ctx context.Context) {
	w.logger.Info("outbox relay started", "interval", w.interval, "batch_size", w.batchSize)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox relay stopping")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("outbox relay failed", "error", err)
			}
		}
	}
}

// RunOnce publishes one batch and returns how many messages were marked
// published. A broker failure ends the batch early; messages already
// accepted stay marked.
func (w *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	var published int
	var publishErr error

	err := w.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		msgs, err := repos.Outbox.FetchUnpublished(ctx, w.batchSize)
		if err != nil {
			return err
		}

		for _, msg := range msgs {
			if err := w.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
				publishErr = fmt.Errorf("publish %s: %w", msg.ID, err)
				break
			}
			if err := repos.Outbox.MarkPublished(ctx, msg.ID, w.now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		w.logger.Info("outbox messages published", "count", published)
	}
	return published, publishErr
}
