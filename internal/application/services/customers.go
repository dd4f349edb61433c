package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

const defaultCustomerStatus = "active"

type CustomerService struct {
	customers application.CustomerRepository
	users     application.UserRepository
	bookings  application.BookingRepository
	payments  application.PaymentRepository
	logger    *slog.Logger
}

func NewCustomerService(
	customers application.CustomerRepository,
	users application.UserRepository,
	bookings application.BookingRepository,
	payments application.PaymentRepository,
	logger *slog.Logger,
) *CustomerService {
	return &CustomerService{
		customers: customers,
		users:     users,
		bookings:  bookings,
		payments:  payments,
		logger:    logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, cmd CustomerCommand) (*domain.Customer, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	now := utcNow()
	customer := &domain.Customer{CreatedAt: now}
	cmd.apply(customer, now)

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("customer created", "customer_id", customer.ID)
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, cmd CustomerCommand) (*domain.Customer, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	cmd.apply(customer, utcNow())
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, mapRepoError(err)
	}
	return customer, nil
}

// Get builds the tabbed customer view: profile with the linked user
// account, bookings with class and instructor names, and payments.
func (s *CustomerService) Get(ctx context.Context, id string) (*application.CustomerDetail, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	detail := &application.CustomerDetail{
		Profile: application.CustomerProfile{Customer: customer},
	}

	if customer.UserID != nil {
		user, err := s.users.FindByID(ctx, *customer.UserID)
		switch {
		case err == nil:
			detail.Profile.User = user
		case domain.IsNotFound(err):
			s.logger.Warn("customer linked to missing user", "customer_id", id, "user_id", *customer.UserID)
		default:
			return nil, mapRepoError(err)
		}
	}

	if detail.Bookings, err = s.bookings.ListByCustomer(ctx, id); err != nil {
		return nil, mapRepoError(err)
	}
	if detail.Payments, err = s.payments.ListByCustomer(ctx, id); err != nil {
		return nil, mapRepoError(err)
	}
	return detail, nil
}

func (s *CustomerService) List(ctx context.Context, page application.Page) ([]*domain.Customer, error) {
	customers, err := s.customers.List(ctx, page)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return customers, nil
}

func (cmd CustomerCommand) apply(c *domain.Customer, now time.Time) {
	c.UserID = cmd.UserID
	c.FirstName = cmd.FirstName
	c.Surname = cmd.Surname
	c.Email = cmd.Email
	c.Phone = cmd.Phone
	switch {
	case cmd.Status != "":
		c.Status = cmd.Status
	case c.Status == "":
		c.Status = defaultCustomerStatus
	}
	c.UpdatedAt = now
}
