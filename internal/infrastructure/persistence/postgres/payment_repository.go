package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
	id, enrollment_id, booking_id, amount_cents, currency, payment_method, payment_status,
	transaction_id, receipt_number, payment_date, notes, created_at`

// PaymentRepository has no update path; payments are a ledger.
type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

// Create inserts the payment, first drawing a receipt number from
// generate_receipt_number() when none is set.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == "" {
		p.ID = newID()
	}

	if p.ReceiptNumber == "" {
		receipt, err := r.NextReceiptNumber(ctx)
		if err != nil {
			return err
		}
		p.ReceiptNumber = receipt
	}

	query := `INSERT INTO payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.EnrollmentID, p.BookingID, p.AmountCents, p.Currency, p.Method, p.Status,
		p.TransactionID, p.ReceiptNumber, p.PaymentDate, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) NextReceiptNumber(ctx context.Context) (string, error) {
	var receipt string
	if err := r.q.QueryRow(ctx, `SELECT generate_receipt_number()`).Scan(&receipt); err != nil {
		return "", fmt.Errorf("failed to generate receipt number: %w", err)
	}
	return receipt, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("payment", id)
	}

	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) List(ctx context.Context, page application.Page) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY payment_date DESC LIMIT $1 OFFSET $2`
	return r.collect(ctx, query, page.Limit, page.Offset)
}

// ListByCustomer covers payments made against the customer's enrollments
// as well as against individual bookings.
func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	if !validID(customerID) {
		return nil, nil
	}
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE enrollment_id IN (SELECT id FROM enrollments WHERE customer_id = $1)
		   OR booking_id IN (SELECT id FROM bookings WHERE customer_id = $1)
		ORDER BY payment_date DESC`
	return r.collect(ctx, query, customerID)
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.Payment, error) {
	if !validID(bookingID) {
		return nil, nil
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY payment_date DESC`
	return r.collect(ctx, query, bookingID)
}

func (r *PaymentRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]*domain.Payment, error) {
	if !validID(enrollmentID) {
		return nil, nil
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE enrollment_id = $1 ORDER BY payment_date DESC`
	return r.collect(ctx, query, enrollmentID)
}

func (r *PaymentRepository) collect(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}

	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return payments, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.EnrollmentID, &p.BookingID, &p.AmountCents, &p.Currency, &p.Method, &p.Status,
		&p.TransactionID, &p.ReceiptNumber, &p.PaymentDate, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
