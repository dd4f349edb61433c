package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DanielPopoola/classbook/internal/application/services/testhelpers"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type E2ETestSuite struct {
	suite.Suite
	testDB  *testhelpers.TestDatabase
	factory *testhelpers.Factory
	server  *httptest.Server
}

func TestE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}

func (suite *E2ETestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.factory = testhelpers.NewFactory(suite.testDB.DB)
	suite.server = newServer(suite.testDB.DB)
}

func (suite *E2ETestSuite) TearDownSuite() {
	suite.server.Close()
	suite.testDB.Cleanup(suite.T())
}

func (suite *E2ETestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *E2ETestSuite) client(role domain.Role) (*TestClient, *domain.User) {
	c := NewTestClient(suite.server.URL)
	if role == "" {
		return c, nil
	}
	user := suite.factory.CreateUser(suite.T(), role)
	c.SignIn(suite.T(), user.ID)
	return c, user
}

// setupCatalogue creates an instructor, a Monday class and a customer
// through the dashboard.
func (suite *E2ETestSuite) setupCatalogue(admin *TestClient, instructorUserID *string) (rest.Instructor, rest.Class, rest.Customer) {
	t := suite.T()

	resp := admin.Do(t, http.MethodPost, "/dashboard/instructors", map[string]any{
		"name":    "Jo Coach",
		"user_id": instructorUserID,
	})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var instructor rest.Instructor
	resp.Data(t, &instructor)

	resp = admin.Do(t, http.MethodPost, "/dashboard/classes", map[string]any{
		"name":             "Morning Pilates",
		"code":             "PIL-MON",
		"exercise_type_id": "pilates",
		"venue":            "Hall A",
		"address":          "1 Beach Rd",
		"day_of_week":      1,
		"start_time":       "09:00",
		"end_time":         "10:00",
		"instructor_id":    instructor.ID,
		"fee_criteria":     "per_term",
		"fee_amount":       12000,
		"term":             "Term4",
		"capacity":         12,
	})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var class rest.Class
	resp.Data(t, &class)

	resp = admin.Do(t, http.MethodPost, "/dashboard/customers", map[string]any{
		"first_name": "Ada",
		"surname":    "Lovelace",
	})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var customer rest.Customer
	resp.Data(t, &customer)

	return instructor, class, customer
}

// ============================================================================
// ROUTE GUARD
// ============================================================================

func (suite *E2ETestSuite) TestGuard_RedirectsAnonymousAndNonAdmin() {
	t := suite.T()

	anonymous, _ := suite.client("")
	resp := anonymous.Do(t, http.MethodGet, "/dashboard/classes", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	assert.Equal(t, "/auth?redirect_to=/dashboard/classes", resp.Location)

	customer, _ := suite.client(domain.RoleCustomer)
	resp = customer.Do(t, http.MethodGet, "/dashboard/classes", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	assert.Equal(t, "/auth?redirect_to=/dashboard/classes", resp.Location)

	resp = customer.Do(t, http.MethodGet, "/instructor-portal/classes", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	assert.Equal(t, "/", resp.Location)

	admin, _ := suite.client(domain.RoleAdmin)
	resp = admin.Do(t, http.MethodGet, "/dashboard/classes", nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func (suite *E2ETestSuite) TestPublicEndpointsBypassGuard() {
	t := suite.T()
	anonymous, _ := suite.client("")

	assert.Equal(t, http.StatusOK, anonymous.Do(t, http.MethodGet, "/healthz", nil).Status)
	assert.Equal(t, http.StatusOK, anonymous.Do(t, http.MethodGet, "/docs/openapi.json", nil).Status)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Do(t, http.MethodPost, "/api/checkout", map[string]any{}).Status)
}

// ============================================================================
// WEBHOOK RECONCILIATION
// ============================================================================

func (suite *E2ETestSuite) TestWebhook_SucceededShowsOnCustomerPage() {
	t := suite.T()
	admin, _ := suite.client(domain.RoleAdmin)
	_, class, customer := suite.setupCatalogue(admin, nil)
	enrollment := suite.factory.CreateEnrollment(t, customer.ID)

	payload := succeededEvent("evt_"+uuid.New().String()[:12], enrollment.ID, 12000, class.ID)

	resp := admin.Webhook(t, payload, webhookSecret)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	assert.JSONEq(t, `{"received":true}`, string(resp.Body))

	// Redelivery is acknowledged without a second booking or payment.
	resp = admin.Webhook(t, payload, webhookSecret)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = admin.Do(t, http.MethodGet, "/dashboard/customers/"+customer.ID, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var detail rest.CustomerDetail
	resp.Data(t, &detail)

	require.Len(t, detail.Bookings, 1)
	assert.Equal(t, class.ID, detail.Bookings[0].ClassID)
	assert.Equal(t, "2026-10-19", detail.Bookings[0].BookingDate)
	assert.Equal(t, "Morning Pilates", detail.Bookings[0].ClassName)
	assert.Equal(t, "Jo Coach", detail.Bookings[0].InstructorName)

	require.Len(t, detail.Payments, 1)
	assert.Equal(t, int64(12000), detail.Payments[0].AmountCents)
	assert.Regexp(t, `^RCP-\d{8}-\d{6}$`, detail.Payments[0].ReceiptNumber)

	saved, err := suite.factory.Enrollments.FindByID(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, saved.PaymentStatus)
}

func (suite *E2ETestSuite) TestWebhook_BadSignatureWritesNothing() {
	t := suite.T()
	admin, _ := suite.client(domain.RoleAdmin)
	_, class, customer := suite.setupCatalogue(admin, nil)
	enrollment := suite.factory.CreateEnrollment(t, customer.ID)

	resp := admin.Webhook(t, succeededEvent("evt_forged", enrollment.ID, 12000, class.ID), "whsec_forged")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, string(resp.Body), `"error"`)

	resp = admin.Do(t, http.MethodGet, "/dashboard/payments", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var payments []rest.Payment
	resp.Data(t, &payments)
	assert.Empty(t, payments)

	saved, err := suite.factory.Enrollments.FindByID(context.Background(), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, saved.PaymentStatus)
}

func (suite *E2ETestSuite) TestWebhook_UnknownEnrollmentAsksForRedelivery() {
	t := suite.T()
	admin, _ := suite.client(domain.RoleAdmin)

	resp := admin.Webhook(t, succeededEvent("evt_orphan", uuid.New().String(), 5000), webhookSecret)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}

// ============================================================================
// INSTRUCTOR PORTAL
// ============================================================================

func (suite *E2ETestSuite) TestPortal_AttendanceLocksBooking() {
	t := suite.T()
	admin, _ := suite.client(domain.RoleAdmin)
	instructorClient, instructorUser := suite.client(domain.RoleInstructor)
	_, class, customer := suite.setupCatalogue(admin, &instructorUser.ID)

	resp := admin.Do(t, http.MethodPost, "/dashboard/bookings", map[string]any{
		"class_id":     class.ID,
		"customer_id":  customer.ID,
		"booking_date": "2026-10-19",
	})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var booking rest.Booking
	resp.Data(t, &booking)

	resp = instructorClient.Do(t, http.MethodGet, "/instructor-portal/classes", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var classes []rest.Class
	resp.Data(t, &classes)
	require.Len(t, classes, 1)
	assert.Equal(t, class.ID, classes[0].ID)

	path := "/instructor-portal/classes/" + class.ID + "/attendance"
	resp = instructorClient.Do(t, http.MethodPost, path, map[string]any{"present_booking_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, string(resp.Body), "no attendance to update")

	resp = instructorClient.Do(t, http.MethodPost, path, map[string]any{"present_booking_ids": []string{booking.ID}})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	resp = admin.Do(t, http.MethodPut, "/dashboard/bookings/"+booking.ID, map[string]any{
		"class_id":     class.ID,
		"customer_id":  customer.ID,
		"booking_date": "2026-10-26",
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
}
