package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, class_id, enrollment_id, customer_id, booking_date, term, is_trial, created_at, updated_at`

const bookingViewQuery = `
	SELECT b.id, b.class_id, b.enrollment_id, b.customer_id, b.booking_date, b.term, b.is_trial,
	       b.created_at, b.updated_at,
	       c.name, i.name, cu.first_name || ' ' || cu.surname
	FROM bookings b
	JOIN classes c ON c.id = b.class_id
	JOIN instructors i ON i.id = c.instructor_id
	JOIN customers cu ON cu.id = b.customer_id`

type BookingRepository struct {
	q Executor
}

func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{q: db.Pool}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = newID()
	}

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ClassID, b.EnrollmentID, b.CustomerID, b.BookingDate, string(b.Term), b.IsTrial,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	if !validID(b.ID) {
		return domain.NewNotFoundError("booking", b.ID)
	}

	query := `
		UPDATE bookings
		SET class_id = $1, booking_date = $2, term = $3, is_trial = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.q.Exec(ctx, query, b.ClassID, b.BookingDate, string(b.Term), b.IsTrial, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("booking", b.ID)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.find(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// FindByIDForUpdate holds the booking row until the transaction ends.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return r.find(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRepository) find(ctx context.Context, query, id string) (*domain.Booking, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("booking", id)
	}

	var (
		b    domain.Booking
		term string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.ClassID, &b.EnrollmentID, &b.CustomerID, &b.BookingDate, &term, &b.IsTrial,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("booking", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	b.Term = domain.Term(term)
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, page application.Page) ([]application.BookingView, error) {
	query := bookingViewQuery + ` ORDER BY b.booking_date DESC, b.created_at DESC LIMIT $1 OFFSET $2`
	return r.collectViews(ctx, query, page.Limit, page.Offset)
}

func (r *BookingRepository) ListByClass(ctx context.Context, classID string) ([]application.BookingView, error) {
	if !validID(classID) {
		return nil, nil
	}
	query := bookingViewQuery + ` WHERE b.class_id = $1 ORDER BY b.booking_date, cu.surname`
	return r.collectViews(ctx, query, classID)
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]application.BookingView, error) {
	if !validID(customerID) {
		return nil, nil
	}
	query := bookingViewQuery + ` WHERE b.customer_id = $1 ORDER BY b.booking_date DESC`
	return r.collectViews(ctx, query, customerID)
}

func (r *BookingRepository) CountByEnrollment(ctx context.Context, enrollmentID string) (int, error) {
	if !validID(enrollmentID) {
		return 0, nil
	}

	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE enrollment_id = $1`, enrollmentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (r *BookingRepository) collectViews(ctx context.Context, query string, args ...any) ([]application.BookingView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (application.BookingView, error) {
		var (
			v    application.BookingView
			term string
		)
		err := row.Scan(
			&v.ID, &v.ClassID, &v.EnrollmentID, &v.CustomerID, &v.BookingDate, &term, &v.IsTrial,
			&v.CreatedAt, &v.UpdatedAt,
			&v.ClassName, &v.InstructorName, &v.CustomerName,
		)
		v.Term = domain.Term(term)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan bookings: %w", err)
	}
	return views, nil
}
