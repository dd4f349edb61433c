package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

const enrollmentColumns = `id, customer_id, enrollment_type, payment_status, status, payment_intent, created_at, updated_at`

type EnrollmentRepository struct {
	q Executor
}

func NewEnrollmentRepository(db *DB) *EnrollmentRepository {
	return &EnrollmentRepository{q: db.Pool}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *domain.Enrollment) error {
	query := `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CustomerID, e.EnrollmentType, string(e.PaymentStatus), string(e.Status),
		e.PaymentIntent, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	return r.find(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves an enrollment with row-level lock
func (r *EnrollmentRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Enrollment, error) {
	return r.find(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1 FOR UPDATE`, id)
}

func (r *EnrollmentRepository) Update(ctx context.Context, e *domain.Enrollment) error {
	query := `
		UPDATE enrollments
		SET payment_status = $1, status = $2, payment_intent = $3, updated_at = $4
		WHERE id = $5
	`
	tag, err := r.q.Exec(ctx, query, string(e.PaymentStatus), string(e.Status), e.PaymentIntent, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("enrollment", e.ID)
	}
	return nil
}

func (r *EnrollmentRepository) find(ctx context.Context, query, id string) (*domain.Enrollment, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("enrollment", id)
	}

	var (
		e             domain.Enrollment
		paymentStatus string
		status        string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.CustomerID, &e.EnrollmentType, &paymentStatus, &status,
		&e.PaymentIntent, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("enrollment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}

	e.PaymentStatus = domain.PaymentStatus(paymentStatus)
	e.Status = domain.EnrollmentStatus(status)
	return &e, nil
}
