package testhelpers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/DanielPopoola/classbook/internal/infrastructure/persistence/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Factory inserts fixture rows through the real repositories.
type Factory struct {
	db          *postgres.DB
	Instructors *postgres.InstructorRepository
	Customers   *postgres.CustomerRepository
	Classes     *postgres.ClassRepository
	Enrollments *postgres.EnrollmentRepository
	Bookings    *postgres.BookingRepository
}

func NewFactory(db *postgres.DB) *Factory {
	return &Factory{
		db:          db,
		Instructors: postgres.NewInstructorRepository(db),
		Customers:   postgres.NewCustomerRepository(db),
		Classes:     postgres.NewClassRepository(db),
		Enrollments: postgres.NewEnrollmentRepository(db),
		Bookings:    postgres.NewBookingRepository(db),
	}
}

// CreateUser inserts an auth user. Users are owned by the auth provider, so
// there is no repository method for this.
func (f *Factory) CreateUser(t *testing.T, role domain.Role) *domain.User {
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     "user-" + uuid.New().String() + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := f.db.Pool.Exec(context.Background(),
		`INSERT INTO users (id, email, role, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, string(user.Role), user.CreatedAt,
	)
	require.NoError(t, err)
	return user
}

func (f *Factory) CreateInstructor(t *testing.T, userID *string) *domain.Instructor {
	now := time.Now().UTC()
	email := "coach-" + uuid.New().String()[:8] + "@example.com"
	instructor := &domain.Instructor{
		UserID:    userID,
		Name:      "Jo Coach",
		Email:     &email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.Instructors.Create(context.Background(), instructor))
	return instructor
}

func (f *Factory) CreateCustomer(t *testing.T, userID *string) *domain.Customer {
	now := time.Now().UTC()
	email := "swimmer-" + uuid.New().String()[:8] + "@example.com"
	customer := &domain.Customer{
		UserID:    userID,
		FirstName: "Sam",
		Surname:   "Swimmer",
		Email:     &email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.Customers.Create(context.Background(), customer))
	return customer
}

// CreateClass inserts a Term1 class on the given ISO weekday.
func (f *Factory) CreateClass(t *testing.T, instructorID string, dayOfWeek int, fee int64) *domain.Class {
	now := time.Now().UTC()
	class := &domain.Class{
		Name:           "Aqua Fit " + uuid.New().String()[:4],
		Code:           "AQF-" + uuid.New().String()[:4],
		ExerciseTypeID: "aqua",
		Venue:          "Leisure Centre",
		Address:        "1 Pool Rd",
		DayOfWeek:      dayOfWeek,
		StartTime:      "09:00",
		EndTime:        "10:00",
		InstructorID:   instructorID,
		FeeCriteria:    "per term",
		FeeAmount:      fee,
		Term:           domain.Term1,
		Capacity:       20,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.Classes.Create(context.Background(), class))
	return class
}

func (f *Factory) CreateEnrollment(t *testing.T, customerID string) *domain.Enrollment {
	enrollment, err := domain.NewEnrollment(uuid.New().String(), customerID, "", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.Enrollments.Create(context.Background(), enrollment))
	return enrollment
}

func (f *Factory) CreateBooking(t *testing.T, class *domain.Class, customerID string, enrollmentID *string) *domain.Booking {
	date := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	booking, err := domain.NewBooking(*class, enrollmentID, customerID, date, false, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.Bookings.Create(context.Background(), booking))
	return booking
}

// SucceededEvent builds a verified payment_intent.succeeded event for an
// enrollment covering the given classes.
func SucceededEvent(enrollmentID string, amount int64, classIDs ...string) domain.GatewayEvent {
	intentID := "pi_" + uuid.New().String()[:12]
	metadata := map[string]string{domain.MetadataEnrollmentID: enrollmentID}
	if len(classIDs) > 0 {
		metadata[domain.MetadataClassIDs] = strings.Join(classIDs, ",")
	}

	return domain.GatewayEvent{
		ID:              "evt_" + uuid.New().String()[:12],
		Kind:            domain.EventPaymentIntentSucceeded,
		Type:            domain.EventPaymentIntentSucceeded.String(),
		CreatedAt:       time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC),
		ObjectID:        intentID,
		PaymentIntentID: intentID,
		Metadata:        metadata,
		Amount:          domain.Money{Amount: amount, Currency: "aud"},
	}
}

// StatusEvent builds an event of a kind that only changes enrollment status.
func StatusEvent(kind domain.EventKind, enrollmentID string) domain.GatewayEvent {
	return domain.GatewayEvent{
		ID:        "evt_" + uuid.New().String()[:12],
		Kind:      kind,
		Type:      kind.String(),
		CreatedAt: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC),
		ObjectID:  "pi_" + uuid.New().String()[:12],
		Metadata:  map[string]string{domain.MetadataEnrollmentID: enrollmentID},
	}
}
