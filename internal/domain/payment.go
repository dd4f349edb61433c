package domain

import (
	"time"
)

const (
	PaymentMethodGateway   = "stripe"
	PaymentRecordCompleted = "completed"
)

// Payment is an append-only ledger entry for one completed transaction.
// Exactly one of EnrollmentID and BookingID is set.
type Payment struct {
	ID            string
	EnrollmentID  *string
	BookingID     *string
	AmountCents   int64
	Currency      string
	Method        string
	Status        string
	TransactionID string
	ReceiptNumber string
	PaymentDate   time.Time
	Notes         string
	CreatedAt     time.Time
}

func NewEnrollmentPayment(enrollmentID string, amount Money, transactionID, notes string, at time.Time) (*Payment, error) {
	if enrollmentID == "" {
		return nil, NewMissingRequiredFieldError("enrollment ID")
	}
	if transactionID == "" {
		return nil, NewMissingRequiredFieldError("transaction ID")
	}

	return &Payment{
		EnrollmentID:  &enrollmentID,
		AmountCents:   amount.Amount,
		Currency:      amount.Currency,
		Method:        PaymentMethodGateway,
		Status:        PaymentRecordCompleted,
		TransactionID: transactionID,
		PaymentDate:   at,
		Notes:         notes,
		CreatedAt:     at,
	}, nil
}
