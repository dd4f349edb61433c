package services

import (
	"context"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

// PaymentQueryService is the read-only payments view. Payments are only
// ever written by reconciliation.
type PaymentQueryService struct {
	payments application.PaymentRepository
}

func NewPaymentQueryService(payments application.PaymentRepository) *PaymentQueryService {
	return &PaymentQueryService{payments: payments}
}

func (s *PaymentQueryService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return payment, nil
}

func (s *PaymentQueryService) List(ctx context.Context, page application.Page) ([]*domain.Payment, error) {
	payments, err := s.payments.List(ctx, page)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return payments, nil
}
