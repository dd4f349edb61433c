package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

type AttendanceRepository struct {
	q Executor
}

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{q: db.Pool}
}

// Record upserts one row per booking in a single batch. The batch runs as
// one implicit transaction and first locks the booking rows, so a booking
// update waiting on them sees the attendance once it commits.
func (r *AttendanceRepository) Record(ctx context.Context, attendance []domain.Attendance) error {
	if len(attendance) == 0 {
		return nil
	}

	bookingIDs := make([]string, 0, len(attendance))
	for _, a := range attendance {
		bookingIDs = append(bookingIDs, a.BookingID)
	}

	query := `
		INSERT INTO class_attendance (id, class_id, booking_id, attended, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (booking_id) DO UPDATE
		SET attended = EXCLUDED.attended, recorded_at = EXCLUDED.recorded_at
	`

	batch := &pgx.Batch{}
	batch.Queue(`SELECT id FROM bookings WHERE id = ANY($1::text[]::uuid[]) ORDER BY id FOR UPDATE`, bookingIDs)
	for i := range attendance {
		a := &attendance[i]
		if a.ID == "" {
			a.ID = newID()
		}
		batch.Queue(query, a.ID, a.ClassID, a.BookingID, a.Attended, a.RecordedAt)
	}

	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	if !validID(bookingID) {
		return false, nil
	}

	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM class_attendance WHERE booking_id = $1)`, bookingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendance: %w", err)
	}
	return exists, nil
}

func (r *AttendanceRepository) ListByClass(ctx context.Context, classID string) ([]domain.Attendance, error) {
	if !validID(classID) {
		return nil, nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, class_id, booking_id, attended, recorded_at
		FROM class_attendance WHERE class_id = $1 ORDER BY recorded_at`, classID)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Attendance, error) {
		var a domain.Attendance
		err := row.Scan(&a.ID, &a.ClassID, &a.BookingID, &a.Attended, &a.RecordedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan attendance: %w", err)
	}
	return records, nil
}
