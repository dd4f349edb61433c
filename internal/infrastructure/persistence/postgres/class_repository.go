package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

const classColumns = `
	id, name, code, exercise_type_id, venue, address, zip_code, day_of_week,
	start_time, end_time, instructor_id, fee_criteria, fee_amount, term,
	capacity, is_subsidised, created_at, updated_at`

type ClassRepository struct {
	q Executor
}

func NewClassRepository(db *DB) *ClassRepository {
	return &ClassRepository{q: db.Pool}
}

func (r *ClassRepository) Create(ctx context.Context, c *domain.Class) error {
	if c.ID == "" {
		c.ID = newID()
	}

	query := `
		INSERT INTO classes (` + classColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Code, c.ExerciseTypeID, c.Venue, c.Address, c.ZipCode, c.DayOfWeek,
		c.StartTime, c.EndTime, c.InstructorID, c.FeeCriteria, c.FeeAmount, string(c.Term),
		c.Capacity, c.IsSubsidised, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

func (r *ClassRepository) Update(ctx context.Context, c *domain.Class) error {
	if !validID(c.ID) {
		return domain.NewNotFoundError("class", c.ID)
	}

	query := `
		UPDATE classes
		SET name = $1, code = $2, exercise_type_id = $3, venue = $4, address = $5,
			zip_code = $6, day_of_week = $7, start_time = $8, end_time = $9,
			instructor_id = $10, fee_criteria = $11, fee_amount = $12, term = $13,
			capacity = $14, is_subsidised = $15, updated_at = $16
		WHERE id = $17
	`
	tag, err := r.q.Exec(ctx, query,
		c.Name, c.Code, c.ExerciseTypeID, c.Venue, c.Address,
		c.ZipCode, c.DayOfWeek, c.StartTime, c.EndTime,
		c.InstructorID, c.FeeCriteria, c.FeeAmount, string(c.Term),
		c.Capacity, c.IsSubsidised, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("class", c.ID)
	}
	return nil
}

func (r *ClassRepository) FindByID(ctx context.Context, id string) (*domain.Class, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("class", id)
	}

	row := r.q.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	c, err := scanClass(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("class", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan class: %w", err)
	}
	return c, nil
}

func (r *ClassRepository) List(ctx context.Context, page application.Page) ([]*domain.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes ORDER BY day_of_week, start_time, name LIMIT $1 OFFSET $2`
	return r.collect(ctx, query, page.Limit, page.Offset)
}

func (r *ClassRepository) ListByInstructor(ctx context.Context, instructorID string) ([]*domain.Class, error) {
	if !validID(instructorID) {
		return nil, nil
	}
	query := `SELECT ` + classColumns + ` FROM classes WHERE instructor_id = $1 ORDER BY day_of_week, start_time`
	return r.collect(ctx, query, instructorID)
}

func (r *ClassRepository) collect(ctx context.Context, query string, args ...any) ([]*domain.Class, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}

	classes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Class, error) {
		return scanClass(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan classes: %w", err)
	}
	return classes, nil
}

func scanClass(row pgx.Row) (*domain.Class, error) {
	var (
		c    domain.Class
		term string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Code, &c.ExerciseTypeID, &c.Venue, &c.Address, &c.ZipCode, &c.DayOfWeek,
		&c.StartTime, &c.EndTime, &c.InstructorID, &c.FeeCriteria, &c.FeeAmount, &term,
		&c.Capacity, &c.IsSubsidised, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Term = domain.Term(term)
	return &c, nil
}
