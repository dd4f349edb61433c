// Package e2e drives the full HTTP stack against a real Postgres.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/classbook/internal/access"
	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/application/services/testhelpers"
	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/infrastructure/cache"
	"github.com/DanielPopoola/classbook/internal/infrastructure/gateway"
	"github.com/DanielPopoola/classbook/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/docs"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/middleware"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const webhookSecret = "whsec_e2e"

var authConfig = config.AuthConfig{
	JWTSecret:     "e2e-session-secret",
	CookieName:    "classbook-session",
	SessionTTL:    time.Hour,
	RefreshWindow: 10 * time.Minute,
}

// newServer wires the production handler chain over database. Checkout is
// left unwired; the gateway client is not exercised here.
func newServer(database *postgres.DB) *httptest.Server {
	logger := testhelpers.Logger()

	classes := postgres.NewClassRepository(database)
	instructors := postgres.NewInstructorRepository(database)
	customers := postgres.NewCustomerRepository(database)
	users := postgres.NewUserRepository(database)
	enrollments := postgres.NewEnrollmentRepository(database)
	bookings := postgres.NewBookingRepository(database)
	payments := postgres.NewPaymentRepository(database)
	attendance := postgres.NewAttendanceRepository(database)
	uow := postgres.NewTransactionCoordinator(database)

	roles := cache.NewRoleCache(users, nil, time.Minute, logger)
	sessions := access.NewSessionManager(authConfig)

	svc := handlers.Services{
		Classes:     services.NewClassService(classes, instructors, bookings, logger),
		Instructors: services.NewInstructorService(instructors, logger),
		Customers:   services.NewCustomerService(customers, users, bookings, payments, logger),
		Bookings:    services.NewBookingService(bookings, classes, customers, enrollments, payments, uow, logger),
		Payments:    services.NewPaymentQueryService(payments),
		Portal:      services.NewInstructorPortalService(instructors, classes, bookings, attendance, logger),
	}
	verifier := gateway.NewWebhookVerifier(config.GatewayConfig{WebhookSecret: webhookSecret, Tolerance: 5 * time.Minute}, testhelpers.Logger())

	mux := http.NewServeMux()
	handlers.Register(mux,
		handlers.NewHandlers(svc, sessions, roles, logger),
		handlers.NewWebhookHandler(verifier, services.NewReconciliationService(uow, classes, logger), logger),
		handlers.Health(database.Pool, logger),
		docs.Handler(logger),
	)

	handler := middleware.Guard(sessions, access.NewGuard(roles, logger), logger)(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	return httptest.NewServer(handler)
}

// TestClient wraps HTTP calls to the server. Redirects are returned, not
// followed, so guard decisions stay visible.
type TestClient struct {
	baseURL    string
	httpClient *http.Client
	cookie     *http.Cookie
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SignIn attaches a session for userID to every later request.
func (c *TestClient) SignIn(t *testing.T, userID string) {
	sessions := access.NewSessionManager(authConfig)
	session, err := sessions.Issue(userID, "")
	require.NoError(t, err)
	c.cookie = sessions.Cookie(session)
}

type Response struct {
	Status   int
	Location string
	Body     []byte
}

// Data decodes the data field of a success envelope into dst.
func (r Response) Data(t *testing.T, dst any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(r.Body, &envelope), string(r.Body))
	require.True(t, envelope.Success, string(r.Body))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func (c *TestClient) Do(t *testing.T, method, path string, body any) Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	return c.send(t, req)
}

// Webhook posts a payment gateway event signed with secret.
func (c *TestClient) Webhook(t *testing.T, payload []byte, secret string) Response {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/stripe/webhook", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(gateway.SignatureHeader, signed.Header)
	return c.send(t, req)
}

func (c *TestClient) send(t *testing.T, req *http.Request) Response {
	t.Helper()

	resp, err := c.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return Response{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: body}
}

// succeededEvent renders a payment_intent.succeeded event body.
func succeededEvent(eventID, enrollmentID string, amount int64, classIDs ...string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": "payment_intent.succeeded",
		"created": %d,
		"api_version": "2023-10-16",
		"data": {"object": {
			"id": "pi_%s",
			"object": "payment_intent",
			"amount": %d,
			"amount_received": %d,
			"currency": "aud",
			"metadata": {"enrollmentId": %q, "classIds": %q, "bookingDate": "2026-10-19"}
		}}
	}`, eventID, time.Now().Unix(), eventID, amount, amount, enrollmentID, strings.Join(classIDs, ",")))
}
