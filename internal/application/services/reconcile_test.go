package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/application/services/testhelpers"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/DanielPopoola/classbook/internal/infrastructure/persistence/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	testDB   *testhelpers.TestDatabase
	factory  *testhelpers.Factory
	payments *postgres.PaymentRepository
	bookings *postgres.BookingRepository
	uow      *postgres.TransactionCoordinator
	service  *services.ReconciliationService

	customer   *domain.Customer
	instructor *domain.Instructor
}

func TestReconciliationServiceSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

func (suite *ReconciliationServiceTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.factory = testhelpers.NewFactory(suite.testDB.DB)
	suite.payments = postgres.NewPaymentRepository(suite.testDB.DB)
	suite.bookings = postgres.NewBookingRepository(suite.testDB.DB)
	suite.uow = postgres.NewTransactionCoordinator(suite.testDB.DB)
}

func (suite *ReconciliationServiceTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
	suite.service = services.NewReconciliationService(suite.uow, suite.factory.Classes, testhelpers.Logger())
	suite.customer = suite.factory.CreateCustomer(suite.T(), nil)
	suite.instructor = suite.factory.CreateInstructor(suite.T(), nil)
}

// ============================================================================
// PAYMENT SUCCEEDED
// ============================================================================

func (suite *ReconciliationServiceTestSuite) Test_Apply_Succeeded_CreatesBookingPerClassAndOnePayment() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	monday := suite.factory.CreateClass(t, suite.instructor.ID, 1, 12000)
	thursday := suite.factory.CreateClass(t, suite.instructor.ID, 4, 9000)
	ev := testhelpers.SucceededEvent(enrollment.ID, 21000, monday.ID, thursday.ID)

	outcome, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeApplied, outcome)

	saved, err := suite.factory.Enrollments.FindByID(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, saved.PaymentStatus)
	assert.Equal(t, domain.EnrollmentActive, saved.Status)
	require.NotNil(t, saved.PaymentIntent)
	assert.Equal(t, ev.PaymentIntentID, *saved.PaymentIntent)

	count, err := suite.bookings.CountByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	payments, err := suite.payments.ListByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(21000), payments[0].AmountCents)
	assert.Equal(t, ev.PaymentIntentID, payments[0].TransactionID)
	assert.Regexp(t, `^RCP-\d{8}-\d{6}$`, payments[0].ReceiptNumber)
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_Succeeded_BookingUsesNextClassDay() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	monday := suite.factory.CreateClass(t, suite.instructor.ID, 1, 12000)

	_, err := suite.service.Apply(ctx, testhelpers.SucceededEvent(enrollment.ID, 12000, monday.ID))
	require.NoError(t, err)

	views, err := suite.bookings.ListByClass(ctx, monday.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "2026-10-19", views[0].BookingDate.Format("2006-01-02"))
	assert.Equal(t, domain.Term1, views[0].Term)
	assert.Equal(t, suite.customer.ID, views[0].CustomerID)
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_Succeeded_SkipsUnresolvableClass() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	first := suite.factory.CreateClass(t, suite.instructor.ID, 2, 5000)
	second := suite.factory.CreateClass(t, suite.instructor.ID, 3, 5000)
	ev := testhelpers.SucceededEvent(enrollment.ID, 15000, first.ID, uuid.New().String(), "not-a-uuid", second.ID)

	outcome, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeApplied, outcome)

	count, err := suite.bookings.CountByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	payments, err := suite.payments.ListByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

// ============================================================================
// IDEMPOTENCY
// ============================================================================

func (suite *ReconciliationServiceTestSuite) Test_Apply_RedeliveredEvent_WritesNothing() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	class := suite.factory.CreateClass(t, suite.instructor.ID, 5, 8000)
	ev := testhelpers.SucceededEvent(enrollment.ID, 8000, class.ID)

	first, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeApplied, first)

	second, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeDuplicate, second)

	count, err := suite.bookings.CountByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	payments, err := suite.payments.ListByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	var outboxRows int
	require.NoError(t, suite.testDB.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&outboxRows))
	assert.Equal(t, 1, outboxRows)
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_ConcurrentDeliveries_ApplyOnce() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	class := suite.factory.CreateClass(t, suite.instructor.ID, 6, 8000)
	ev := testhelpers.SucceededEvent(enrollment.ID, 8000, class.ID)

	const deliveries = 5
	outcomes := make(chan services.Outcome, deliveries)
	errs := make(chan error, deliveries)
	for range deliveries {
		go func() {
			outcome, err := suite.service.Apply(ctx, ev)
			outcomes <- outcome
			errs <- err
		}()
	}

	applied := 0
	for range deliveries {
		require.NoError(t, <-errs)
		if <-outcomes == services.OutcomeApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)

	payments, err := suite.payments.ListByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_FailureRollsBackLedgerAndWrites() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	class := suite.factory.CreateClass(t, suite.instructor.ID, 1, 8000)
	ev := testhelpers.SucceededEvent(enrollment.ID, 8000, class.ID)

	broken := services.NewReconciliationService(failingOutboxUoW{inner: suite.uow}, suite.factory.Classes, testhelpers.Logger())
	_, err := broken.Apply(ctx, ev)
	require.Error(t, err)

	saved, err := suite.factory.Enrollments.FindByID(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, saved.PaymentStatus)

	count, err := suite.bookings.CountByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The gateway's redelivery applies cleanly.
	outcome, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeApplied, outcome)

	payments, err := suite.payments.ListByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

// ============================================================================
// STATUS EVENTS
// ============================================================================

func (suite *ReconciliationServiceTestSuite) Test_Apply_StatusEvents_CancelRegardlessOfPriorState() {
	ctx := context.Background()
	t := suite.T()

	cases := []struct {
		kind    domain.EventKind
		payment domain.PaymentStatus
		status  domain.EnrollmentStatus
	}{
		{domain.EventPaymentIntentFailed, domain.PaymentFailed, domain.EnrollmentCancelled},
		{domain.EventPaymentIntentCanceled, domain.PaymentCancelled, domain.EnrollmentCancelled},
		{domain.EventChargeRefunded, domain.PaymentRefunded, domain.EnrollmentCancelled},
		{domain.EventChargeDisputeCreated, domain.PaymentDisputed, domain.EnrollmentActive},
	}

	for _, tc := range cases {
		enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
		class := suite.factory.CreateClass(t, suite.instructor.ID, 2, 1000)

		_, err := suite.service.Apply(ctx, testhelpers.SucceededEvent(enrollment.ID, 1000, class.ID))
		require.NoError(t, err)

		outcome, err := suite.service.Apply(ctx, testhelpers.StatusEvent(tc.kind, enrollment.ID))
		require.NoError(t, err, tc.kind.String())
		assert.Equal(t, services.OutcomeApplied, outcome, tc.kind.String())

		saved, err := suite.factory.Enrollments.FindByID(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.payment, saved.PaymentStatus, tc.kind.String())
		assert.Equal(t, tc.status, saved.Status, tc.kind.String())
	}
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_StatusEvent_EnqueuesOutboxMessage() {
	ctx := context.Background()
	t := suite.T()

	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	_, err := suite.service.Apply(ctx, testhelpers.StatusEvent(domain.EventPaymentIntentFailed, enrollment.ID))
	require.NoError(t, err)

	msgs, err := postgres.NewOutboxRepository(suite.testDB.DB).FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "enrollment.failed", msgs[0].RoutingKey)
	assert.Equal(t, enrollment.ID, msgs[0].AggregateID)

	var payload domain.EnrollmentChanged
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, enrollment.ID, payload.EnrollmentID)
	assert.Equal(t, string(domain.PaymentFailed), payload.PaymentStatus)
}

// ============================================================================
// EDGE CASES
// ============================================================================

func (suite *ReconciliationServiceTestSuite) Test_Apply_MissingEnrollmentReference_Ignored() {
	ctx := context.Background()
	t := suite.T()

	ev := testhelpers.StatusEvent(domain.EventPaymentIntentFailed, "")
	outcome, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeIgnored, outcome)
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_LogOnlyEvent_RecordedOnce() {
	ctx := context.Background()
	t := suite.T()

	ev := testhelpers.StatusEvent(domain.EventPaymentIntentCreated, uuid.New().String())

	outcome, err := suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeIgnored, outcome)

	outcome, err = suite.service.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeDuplicate, outcome)
}

func (suite *ReconciliationServiceTestSuite) Test_Apply_UnknownEnrollment_Fails() {
	ctx := context.Background()
	t := suite.T()

	ev := testhelpers.StatusEvent(domain.EventPaymentIntentFailed, uuid.New().String())
	_, err := suite.service.Apply(ctx, ev)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	// Nothing was recorded, so a retry fails the same way rather than
	// reporting a duplicate.
	_, err = suite.service.Apply(ctx, ev)
	require.Error(t, err)
}

// failingOutboxUoW runs the real transaction but fails every outbox write.
type failingOutboxUoW struct {
	inner application.UnitOfWork
}

func (u failingOutboxUoW) WithTransaction(ctx context.Context, fn func(context.Context, application.Repositories) error) error {
	return u.inner.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		repos.Outbox = failingOutbox{}
		return fn(ctx, repos)
	})
}

type failingOutbox struct {
	application.OutboxRepository
}

func (failingOutbox) Enqueue(context.Context, application.OutboxMessage) error {
	return errors.New("outbox unavailable")
}
