package services_test

import (
	"context"
	"testing"
	"time"

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

type DashboardServicesTestSuite struct {
	suite.Suite
	testDB     *testhelpers.TestDatabase
	factory    *testhelpers.Factory
	attendance *postgres.AttendanceRepository
	uow        *postgres.TransactionCoordinator

	classes   *services.ClassService
	customers *services.CustomerService
	bookings  *services.BookingService
	payments  *services.PaymentQueryService
	reconcile *services.ReconciliationService

	instructor *domain.Instructor
	customer   *domain.Customer
}

func TestDashboardServicesSuite(t *testing.T) {
	suite.Run(t, new(DashboardServicesTestSuite))
}

func (suite *DashboardServicesTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	db := suite.testDB.DB
	logger := testhelpers.Logger()

	suite.factory = testhelpers.NewFactory(db)
	suite.attendance = postgres.NewAttendanceRepository(db)
	suite.uow = postgres.NewTransactionCoordinator(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	suite.classes = services.NewClassService(suite.factory.Classes, suite.factory.Instructors, suite.factory.Bookings, logger)
	suite.customers = services.NewCustomerService(
		suite.factory.Customers, postgres.NewUserRepository(db), suite.factory.Bookings, paymentRepo, logger,
	)
	suite.bookings = services.NewBookingService(
		suite.factory.Bookings, suite.factory.Classes, suite.factory.Customers,
		suite.factory.Enrollments, paymentRepo, suite.uow, logger,
	)
	suite.payments = services.NewPaymentQueryService(paymentRepo)
	suite.reconcile = services.NewReconciliationService(suite.uow, suite.factory.Classes, logger)
}

func (suite *DashboardServicesTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *DashboardServicesTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
	suite.instructor = suite.factory.CreateInstructor(suite.T(), nil)
	suite.customer = suite.factory.CreateCustomer(suite.T(), nil)
}

func (suite *DashboardServicesTestSuite) classCommand() services.ClassCommand {
	return services.ClassCommand{
		Name:           "Deep Water Running",
		Code:           "DWR-1",
		ExerciseTypeID: "aqua",
		Venue:          "Leisure Centre",
		Address:        "1 Pool Rd",
		DayOfWeek:      3,
		StartTime:      "18:00",
		EndTime:        "18:45",
		InstructorID:   suite.instructor.ID,
		FeeCriteria:    "per term",
		FeeAmount:      15000,
		Term:           "Term2",
		Capacity:       12,
	}
}

// ============================================================================
// CLASSES
// ============================================================================

func (suite *DashboardServicesTestSuite) Test_Class_CreateAndGet() {
	ctx := context.Background()
	t := suite.T()

	created, err := suite.classes.Create(ctx, suite.classCommand())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	detail, err := suite.classes.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "DWR-1", detail.Class.Code)
	assert.Equal(t, domain.Term2, detail.Class.Term)
	require.NotNil(t, detail.Instructor)
	assert.Equal(t, suite.instructor.ID, detail.Instructor.ID)
	assert.Empty(t, detail.Bookings)
}

func (suite *DashboardServicesTestSuite) Test_Class_Create_RejectsInvalidForm() {
	ctx := context.Background()
	t := suite.T()

	cases := map[string]func(*services.ClassCommand){
		"name":          func(c *services.ClassCommand) { c.Name = "" },
		"day_of_week":   func(c *services.ClassCommand) { c.DayOfWeek = 8 },
		"fee_amount":    func(c *services.ClassCommand) { c.FeeAmount = -1 },
		"capacity":      func(c *services.ClassCommand) { c.Capacity = -5 },
		"term":          func(c *services.ClassCommand) { c.Term = "Term5" },
		"start_time":    func(c *services.ClassCommand) { c.StartTime = "6pm" },
		"end_time":      func(c *services.ClassCommand) { c.EndTime = "17:00" },
		"instructor_id": func(c *services.ClassCommand) { c.InstructorID = uuid.New().String() },
	}

	for field, mutate := range cases {
		cmd := suite.classCommand()
		mutate(&cmd)

		_, err := suite.classes.Create(ctx, cmd)
		require.Error(t, err, field)

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok, field)
		assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code, field)
		assert.Contains(t, svcErr.Details, field)
	}
}

func (suite *DashboardServicesTestSuite) Test_Class_Update_NotFound() {
	_, err := suite.classes.Update(context.Background(), uuid.New().String(), suite.classCommand())
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), 404, application.ToHTTPStatus(err))
}

// ============================================================================
// CUSTOMERS
// ============================================================================

func (suite *DashboardServicesTestSuite) Test_Customer_DetailTabs() {
	ctx := context.Background()
	t := suite.T()

	user := suite.factory.CreateUser(t, domain.RoleCustomer)
	customer := suite.factory.CreateCustomer(t, &user.ID)
	class := suite.factory.CreateClass(t, suite.instructor.ID, 1, 4000)
	enrollment := suite.factory.CreateEnrollment(t, customer.ID)

	_, err := suite.reconcile.Apply(ctx, testhelpers.SucceededEvent(enrollment.ID, 4000, class.ID))
	require.NoError(t, err)

	detail, err := suite.customers.Get(ctx, customer.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.Profile.User)
	assert.Equal(t, user.Email, detail.Profile.User.Email)
	require.Len(t, detail.Bookings, 1)
	assert.Equal(t, class.Name, detail.Bookings[0].ClassName)
	assert.Equal(t, suite.instructor.Name, detail.Bookings[0].InstructorName)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, int64(4000), detail.Payments[0].AmountCents)
}

func (suite *DashboardServicesTestSuite) Test_Customer_UpdateKeepsStatusWhenOmitted() {
	ctx := context.Background()
	t := suite.T()

	created, err := suite.customers.Create(ctx, services.CustomerCommand{
		FirstName: "Ana", Surname: "Lee", Status: "inactive",
	})
	require.NoError(t, err)

	updated, err := suite.customers.Update(ctx, created.ID, services.CustomerCommand{
		FirstName: "Ana", Surname: "Lee-Park",
	})
	require.NoError(t, err)
	assert.Equal(t, "inactive", updated.Status)
	assert.Equal(t, "Lee-Park", updated.Surname)
}

// ============================================================================
// BOOKINGS
// ============================================================================

func (suite *DashboardServicesTestSuite) Test_Booking_CreateTakesTermFromClass() {
	ctx := context.Background()
	t := suite.T()

	class := suite.factory.CreateClass(t, suite.instructor.ID, 2, 1000)
	booking, err := suite.bookings.Create(ctx, services.BookingCommand{
		ClassID:     class.ID,
		CustomerID:  suite.customer.ID,
		BookingDate: "2026-10-20",
		IsTrial:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Term1, booking.Term)
	assert.True(t, booking.IsTrial)

	detail, err := suite.bookings.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Enrollment)
	assert.Equal(t, class.ID, detail.Class.ID)
}

func (suite *DashboardServicesTestSuite) Test_Booking_UpdateRejectedAfterAttendance() {
	ctx := context.Background()
	t := suite.T()

	class := suite.factory.CreateClass(t, suite.instructor.ID, 2, 1000)
	booking := suite.factory.CreateBooking(t, class, suite.customer.ID, nil)

	require.NoError(t, suite.attendance.Record(ctx, []domain.Attendance{{
		ClassID: class.ID, BookingID: booking.ID, Attended: true, RecordedAt: time.Now().UTC(),
	}}))

	_, err := suite.bookings.Update(ctx, booking.ID, services.BookingCommand{
		ClassID:     class.ID,
		CustomerID:  suite.customer.ID,
		BookingDate: "2026-10-27",
	})
	require.Error(t, err)
	assert.Equal(t, 409, application.ToHTTPStatus(err))
}

func (suite *DashboardServicesTestSuite) Test_Booking_UpdateWaitsForAttendanceInFlight() {
	ctx := context.Background()
	t := suite.T()

	class := suite.factory.CreateClass(t, suite.instructor.ID, 2, 1000)
	booking := suite.factory.CreateBooking(t, class, suite.customer.ID, nil)

	updated := make(chan error, 1)
	err := suite.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		if err := repos.Attendance.Record(ctx, []domain.Attendance{{
			ClassID: class.ID, BookingID: booking.ID, Attended: true, RecordedAt: time.Now().UTC(),
		}}); err != nil {
			return err
		}

		go func() {
			_, err := suite.bookings.Update(context.Background(), booking.ID, services.BookingCommand{
				ClassID:     class.ID,
				CustomerID:  suite.customer.ID,
				BookingDate: "2026-10-27",
			})
			updated <- err
		}()

		select {
		case err := <-updated:
			t.Errorf("update finished while attendance was uncommitted: %v", err)
		case <-time.After(200 * time.Millisecond):
		}
		return nil
	})
	require.NoError(t, err)

	select {
	case err := <-updated:
		require.Error(t, err)
		assert.Equal(t, 409, application.ToHTTPStatus(err))
	case <-time.After(5 * time.Second):
		t.Fatal("update never finished")
	}

	saved, err := suite.factory.Bookings.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", saved.BookingDate.Format("2006-01-02"))
}

func (suite *DashboardServicesTestSuite) Test_Booking_DetailIncludesEnrollmentPayment() {
	ctx := context.Background()
	t := suite.T()

	class := suite.factory.CreateClass(t, suite.instructor.ID, 4, 7000)
	enrollment := suite.factory.CreateEnrollment(t, suite.customer.ID)
	_, err := suite.reconcile.Apply(ctx, testhelpers.SucceededEvent(enrollment.ID, 7000, class.ID))
	require.NoError(t, err)

	views, err := suite.bookings.List(ctx, application.NewPage(0, 0))
	require.NoError(t, err)
	require.Len(t, views, 1)

	detail, err := suite.bookings.Get(ctx, views[0].ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Enrollment)
	assert.Equal(t, domain.PaymentPaid, detail.Enrollment.PaymentStatus)
	require.Len(t, detail.Payments, 1)

	payment, err := suite.payments.Get(ctx, detail.Payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, detail.Payments[0].ReceiptNumber, payment.ReceiptNumber)
}
