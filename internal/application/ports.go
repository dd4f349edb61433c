package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/classbook/internal/domain"
)

type ClassRepository interface {
	Create(ctx context.Context, class *domain.Class) error
	Update(ctx context.Context, class *domain.Class) error
	FindByID(ctx context.Context, id string) (*domain.Class, error)
	List(ctx context.Context, page Page) ([]*domain.Class, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]*domain.Class, error)
}

type InstructorRepository interface {
	Create(ctx context.Context, instructor *domain.Instructor) error
	Update(ctx context.Context, instructor *domain.Instructor) error
	FindByID(ctx context.Context, id string) (*domain.Instructor, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Instructor, error)
	List(ctx context.Context, page Page) ([]*domain.Instructor, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	List(ctx context.Context, page Page) ([]*domain.Customer, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RoleLookup resolves a signed-in user's role for the route guard.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	FindByID(ctx context.Context, id string) (*domain.Enrollment, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Enrollment, error)
	Update(ctx context.Context, enrollment *domain.Enrollment) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, page Page) ([]BookingView, error)
	ListByClass(ctx context.Context, classID string) ([]BookingView, error)
	ListByCustomer(ctx context.Context, customerID string) ([]BookingView, error)
	CountByEnrollment(ctx context.Context, enrollmentID string) (int, error)
}

// PaymentRepository is append-only. Create assigns the receipt number.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, page Page) ([]*domain.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*domain.Payment, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]*domain.Payment, error)
}

type AttendanceRepository interface {
	Record(ctx context.Context, attendance []domain.Attendance) error
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
	ListByClass(ctx context.Context, classID string) ([]domain.Attendance, error)
}

// WebhookEventRepository is the gateway event ledger. Record fails with a
// DUPLICATE_EVENT domain error when the id is already present.
type WebhookEventRepository interface {
	Record(ctx context.Context, eventID, eventType string, receivedAt time.Time) error
	MarkProcessed(ctx context.Context, eventID string, at time.Time) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
}

// Repositories are bound to a single transaction.
type Repositories struct {
	Enrollments   EnrollmentRepository
	Bookings      BookingRepository
	Payments      PaymentRepository
	Attendance    AttendanceRepository
	WebhookEvents WebhookEventRepository
	Outbox        OutboxRepository
}

type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// EventPublisher delivers outbox messages to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
}

// PaymentIntentCreator opens a payment at the gateway for a checkout.
type PaymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
}

type PaymentIntentRequest struct {
	EnrollmentID string
	Amount       domain.Money
	ClassIDs     []string
	BookingDate  string
	IsTrial      bool
	Email        string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}
