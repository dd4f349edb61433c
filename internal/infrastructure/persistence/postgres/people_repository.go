package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	instructorColumns = `id, user_id, name, email, phone, specialty, created_at, updated_at`
	customerColumns   = `id, user_id, first_name, surname, email, phone, status, created_at, updated_at`
)

type InstructorRepository struct {
	q Executor
}

func NewInstructorRepository(db *DB) *InstructorRepository {
	return &InstructorRepository{q: db.Pool}
}

func (r *InstructorRepository) Create(ctx context.Context, i *domain.Instructor) error {
	if i.ID == "" {
		i.ID = newID()
	}

	query := `INSERT INTO instructors (` + instructorColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.UserID, i.Name, i.Email, i.Phone, i.Specialty, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create instructor: %w", err)
	}
	return nil
}

func (r *InstructorRepository) Update(ctx context.Context, i *domain.Instructor) error {
	if !validID(i.ID) {
		return domain.NewNotFoundError("instructor", i.ID)
	}

	query := `
		UPDATE instructors
		SET user_id = $1, name = $2, email = $3, phone = $4, specialty = $5, updated_at = $6
		WHERE id = $7
	`
	tag, err := r.q.Exec(ctx, query, i.UserID, i.Name, i.Email, i.Phone, i.Specialty, i.UpdatedAt, i.ID)
	if err != nil {
		return fmt.Errorf("failed to update instructor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("instructor", i.ID)
	}
	return nil
}

func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*domain.Instructor, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("instructor", id)
	}
	return r.findOne(ctx, `SELECT `+instructorColumns+` FROM instructors WHERE id = $1`, id)
}

func (r *InstructorRepository) FindByUserID(ctx context.Context, userID string) (*domain.Instructor, error) {
	if !validID(userID) {
		return nil, domain.NewNotFoundError("instructor for user", userID)
	}
	return r.findOne(ctx, `SELECT `+instructorColumns+` FROM instructors WHERE user_id = $1 LIMIT 1`, userID)
}

func (r *InstructorRepository) List(ctx context.Context, page application.Page) ([]*domain.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query instructors: %w", err)
	}

	instructors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Instructor, error) {
		return scanInstructor(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan instructors: %w", err)
	}
	return instructors, nil
}

func (r *InstructorRepository) findOne(ctx context.Context, query, id string) (*domain.Instructor, error) {
	i, err := scanInstructor(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("instructor", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan instructor: %w", err)
	}
	return i, nil
}

func scanInstructor(row pgx.Row) (*domain.Instructor, error) {
	var i domain.Instructor
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.Email, &i.Phone, &i.Specialty, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

type CustomerRepository struct {
	q Executor
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{q: db.Pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = newID()
	}

	query := `INSERT INTO customers (` + customerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.UserID, c.FirstName, c.Surname, c.Email, c.Phone, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	if !validID(c.ID) {
		return domain.NewNotFoundError("customer", c.ID)
	}

	query := `
		UPDATE customers
		SET user_id = $1, first_name = $2, surname = $3, email = $4, phone = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	tag, err := r.q.Exec(ctx, query, c.UserID, c.FirstName, c.Surname, c.Email, c.Phone, c.Status, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("customer", c.ID)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("customer", id)
	}
	return r.findOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	if !validID(userID) {
		return nil, domain.NewNotFoundError("customer for user", userID)
	}
	return r.findOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1 LIMIT 1`, userID)
}

func (r *CustomerRepository) List(ctx context.Context, page application.Page) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY surname, first_name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}

	customers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Customer, error) {
		return scanCustomer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan customers: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) findOne(ctx context.Context, query, id string) (*domain.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("customer", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.Surname, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type UserRepository struct {
	q Executor
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.NewNotFoundError("user", id)
	}

	var (
		u    domain.User
		role string
	)
	err := r.q.QueryRow(ctx,
		`SELECT id, email, role, full_name, avatar_url, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &role, &u.FullName, &u.AvatarURL, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// RoleOf reads only the role column; it backs the route guard.
func (r *UserRepository) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	if !validID(userID) {
		return "", domain.NewNotFoundError("user", userID)
	}

	var role string
	err := r.q.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.NewNotFoundError("user", userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load role: %w", err)
	}
	return domain.Role(role), nil
}
