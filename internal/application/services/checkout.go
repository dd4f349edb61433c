package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/google/uuid"
)

type CheckoutResult struct {
	EnrollmentID    string `json:"enrollment_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
}

// CheckoutService opens a pending enrollment and a gateway payment intent
// for it. The enrollment only changes afterwards through gateway events.
type CheckoutService struct {
	customers   application.CustomerRepository
	classes     application.ClassRepository
	enrollments application.EnrollmentRepository
	gateway     application.PaymentIntentCreator
	currency    string
	logger      *slog.Logger
}

func NewCheckoutService(
	customers application.CustomerRepository,
	classes application.ClassRepository,
	enrollments application.EnrollmentRepository,
	gateway application.PaymentIntentCreator,
	currency string,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		customers:   customers,
		classes:     classes,
		enrollments: enrollments,
		gateway:     gateway,
		currency:    currency,
		logger:      logger,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, viewer Viewer, cmd CheckoutCommand) (*CheckoutResult, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if cmd.BookingDate != "" {
		if _, err := parseBookingDate(cmd.BookingDate); err != nil {
			return nil, err
		}
	}

	customer, err := s.customers.FindByUserID(ctx, viewer.UserID)
	if domain.IsNotFound(err) {
		return nil, application.NewForbiddenError("No customer profile for this account")
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	// Reconciliation books each class once, so each class is charged once.
	classIDs := uniqueIDs(cmd.ClassIDs)

	var total int64
	for _, id := range classIDs {
		class, err := s.classes.FindByID(ctx, id)
		if err != nil {
			return nil, referenceError("class_ids", err)
		}
		total += class.FeeAmount
	}
	if total <= 0 {
		return nil, invalidField("class_ids", "fee", domain.NewInvalidAmountError(total))
	}

	amount, err := domain.NewMoney(total, s.currency)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	enrollment, err := domain.NewEnrollment(uuid.New().String(), customer.ID, "", utcNow())
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, mapRepoError(err)
	}

	email := ""
	if customer.Email != nil {
		email = *customer.Email
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, application.PaymentIntentRequest{
		EnrollmentID: enrollment.ID,
		Amount:       amount,
		ClassIDs:     classIDs,
		BookingDate:  cmd.BookingDate,
		IsTrial:      cmd.IsTrial,
		Email:        email,
	})
	if err != nil {
		s.logger.Error("failed to create payment intent", "enrollment_id", enrollment.ID, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, application.NewTimeoutError()
		}
		return nil, application.NewGatewayError(err)
	}

	s.logger.Info("checkout started",
		"enrollment_id", enrollment.ID,
		"payment_intent", intent.ID,
		"amount", amount.Amount,
		"classes", len(classIDs),
	)

	return &CheckoutResult{
		EnrollmentID:    enrollment.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		AmountCents:     amount.Amount,
		Currency:        amount.Currency,
	}, nil
}
