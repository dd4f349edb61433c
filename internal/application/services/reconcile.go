package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Outcome string

const (
	// OutcomeApplied means the event's writes were committed.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the event id was already in the ledger.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event was recorded but changed nothing.
	OutcomeIgnored Outcome = "ignored"
)

// ReconciliationService applies verified gateway events to enrollments,
// bookings and payments. Each event is applied at most once: its id is
// recorded in the same transaction as its writes.
type ReconciliationService struct {
	uow     application.UnitOfWork
	classes application.ClassRepository
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

func NewReconciliationService(
	uow application.UnitOfWork,
	classes application.ClassRepository,
	logger *slog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		uow:     uow,
		classes: classes,
		logger:  logger,
		tracer:  otel.Tracer("classbook/reconcile"),
		now:     utcNow,
	}
}

func (s *ReconciliationService) Apply(ctx context.Context, ev domain.GatewayEvent) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.apply", trace.WithAttributes(
		attribute.String("gateway.event_id", ev.ID),
		attribute.String("gateway.event_type", ev.Type),
	))
	defer span.End()

	outcome, err := s.apply(ctx, ev)
	span.SetAttributes(attribute.String("reconcile.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return outcome, err
}

func (s *ReconciliationService) apply(ctx context.Context, ev domain.GatewayEvent) (Outcome, error) {
	logger := s.logger.With("event_id", ev.ID, "event_type", ev.Type, "object_id", ev.ObjectID)
	enrollmentID := ev.EnrollmentID()

	switch {
	case ev.Kind == domain.EventPaymentIntentCreated:
		logger.Info("payment intent created")
	case ev.Kind == domain.EventPaymentIntentRequiresAction:
		logger.Info("additional authentication required")
	case ev.Kind == domain.EventUnknown:
		logger.Debug("unhandled gateway event type")
	case enrollmentID == "":
		logger.Warn("gateway event has no enrollment reference")
	}

	if !ev.Kind.MutatesEnrollment() || enrollmentID == "" {
		return s.recordOnly(ctx, ev)
	}

	// Class lookups run outside the transaction so a bad id cannot abort it.
	var classes []domain.Class
	if ev.Kind == domain.EventPaymentIntentSucceeded {
		classes = s.resolveClasses(ctx, ev, logger)
	}

	var tr domain.Transition
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		now := s.now()
		if err := repos.WebhookEvents.Record(ctx, ev.ID, ev.Type, now); err != nil {
			return err
		}

		current, err := repos.Enrollments.FindByIDForUpdate(ctx, enrollmentID)
		if err != nil {
			return fmt.Errorf("load enrollment %s: %w", enrollmentID, err)
		}

		tr, err = domain.Plan(current, ev, classes, now)
		if err != nil {
			return fmt.Errorf("plan transition: %w", err)
		}

		for _, w := range tr.Writes {
			if err := applyWrite(ctx, repos, w); err != nil {
				return err
			}
		}

		return repos.WebhookEvents.MarkProcessed(ctx, ev.ID, now)
	})
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateEvent) {
			logger.Info("gateway event already processed")
			return OutcomeDuplicate, nil
		}
		logger.Error("failed to apply gateway event", "enrollment_id", enrollmentID, "error", err)
		return "", err
	}

	logger.Info("gateway event applied",
		"enrollment_id", tr.Enrollment.ID,
		"payment_status", tr.Enrollment.PaymentStatus,
		"status", tr.Enrollment.Status,
		"writes", len(tr.Writes),
	)
	return OutcomeApplied, nil
}

// recordOnly enters an event with no state change into the ledger.
func (s *ReconciliationService) recordOnly(ctx context.Context, ev domain.GatewayEvent) (Outcome, error) {
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		now := s.now()
		if err := repos.WebhookEvents.Record(ctx, ev.ID, ev.Type, now); err != nil {
			return err
		}
		return repos.WebhookEvents.MarkProcessed(ctx, ev.ID, now)
	})
	if domain.IsErrorCode(err, domain.ErrCodeDuplicateEvent) {
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return "", err
	}
	return OutcomeIgnored, nil
}

// resolveClasses looks up every class named in the metadata. Lookup
// failures are logged and the class is skipped.
func (s *ReconciliationService) resolveClasses(ctx context.Context, ev domain.GatewayEvent, logger *slog.Logger) []domain.Class {
	ids := ev.ClassIDs()
	classes := make([]domain.Class, 0, len(ids))
	for _, id := range ids {
		class, err := s.classes.FindByID(ctx, id)
		if err != nil {
			logger.Warn("skipping class from payment metadata", "class_id", id, "error", err)
			continue
		}
		classes = append(classes, *class)
	}

	if len(classes) < len(ids) {
		logger.Warn("payment covers classes that could not be booked",
			"requested", len(ids),
			"resolved", len(classes),
		)
	}
	return classes
}

func applyWrite(ctx context.Context, repos application.Repositories, w domain.Write) error {
	switch w := w.(type) {
	case domain.UpdateEnrollment:
		return repos.Enrollments.Update(ctx, w.Enrollment)
	case domain.CreateBooking:
		return repos.Bookings.Create(ctx, w.Booking)
	case domain.CreatePayment:
		return repos.Payments.Create(ctx, w.Payment)
	case domain.PublishEnrollmentChanged:
		payload, err := json.Marshal(w.Event)
		if err != nil {
			return fmt.Errorf("marshal outbox payload: %w", err)
		}
		return repos.Outbox.Enqueue(ctx, application.OutboxMessage{
			AggregateID: w.Event.EnrollmentID,
			RoutingKey:  w.RoutingKey,
			Payload:     payload,
			CreatedAt:   w.Event.OccurredAt,
		})
	default:
		return fmt.Errorf("unsupported write %T", w)
	}
}
