package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/DanielPopoola/classbook/internal/infrastructure/gateway"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const webhookSecret = "whsec_handler_test"

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) Apply(ctx context.Context, ev domain.GatewayEvent) (services.Outcome, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(services.Outcome), args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var succeededPayload = []byte(`{
	"id": "evt_handler_1",
	"object": "event",
	"type": "payment_intent.succeeded",
	"created": 1760520600,
	"api_version": "2023-10-16",
	"data": {"object": {
		"id": "pi_1",
		"object": "payment_intent",
		"amount": 20000,
		"amount_received": 20000,
		"currency": "aud",
		"metadata": {"enrollmentId": "enr-1", "classIds": "c1"}
	}}
}`)

func signedRequest(payload []byte, secret string) *http.Request {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set(gateway.SignatureHeader, signed.Header)
	return req
}

func newWebhookMux(applier handlers.EventApplier) *http.ServeMux {
	verifier := gateway.NewWebhookVerifier(config.GatewayConfig{
		WebhookSecret: webhookSecret,
		Tolerance:     5 * time.Minute,
	}, quietLogger())
	mux := http.NewServeMux()
	handlers.Register(mux,
		handlers.NewHandlers(handlers.Services{}, nil, nil, quietLogger()),
		handlers.NewWebhookHandler(verifier, applier, quietLogger()),
		http.NotFoundHandler(),
		nil,
	)
	return mux
}

func TestWebhook_AppliesVerifiedEvent(t *testing.T) {
	applier := &mockApplier{}
	applier.On("Apply", mock.Anything, mock.MatchedBy(func(ev domain.GatewayEvent) bool {
		return ev.ID == "evt_handler_1" && ev.Kind == domain.EventPaymentIntentSucceeded
	})).Return(services.OutcomeApplied, nil).Once()

	rec := httptest.NewRecorder()
	newWebhookMux(applier).ServeHTTP(rec, signedRequest(succeededPayload, webhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	applier.AssertExpectations(t)
}

func TestWebhook_DuplicateIsAcknowledged(t *testing.T) {
	applier := &mockApplier{}
	applier.On("Apply", mock.Anything, mock.Anything).Return(services.OutcomeDuplicate, nil).Once()

	rec := httptest.NewRecorder()
	newWebhookMux(applier).ServeHTTP(rec, signedRequest(succeededPayload, webhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
}

func TestWebhook_BadSignatureRejectedWithoutApplying(t *testing.T) {
	cases := map[string]*http.Request{
		"wrong secret": signedRequest(succeededPayload, "whsec_other"),
		"missing header": httptest.NewRequest(http.MethodPost, "/api/stripe/webhook",
			bytes.NewReader(succeededPayload)),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			applier := &mockApplier{}

			rec := httptest.NewRecorder()
			newWebhookMux(applier).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
		})
	}
}

func TestWebhook_ProcessingFailureAsksForRedelivery(t *testing.T) {
	applier := &mockApplier{}
	applier.On("Apply", mock.Anything, mock.Anything).
		Return(services.Outcome(""), errors.New("enrollment not found")).Once()

	rec := httptest.NewRecorder()
	newWebhookMux(applier).ServeHTTP(rec, signedRequest(succeededPayload, webhookSecret))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Webhook processing failed"}`, rec.Body.String())
}

func TestWebhook_Preflight(t *testing.T) {
	applier := &mockApplier{}

	rec := httptest.NewRecorder()
	newWebhookMux(applier).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/stripe/webhook", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestWebhook_OtherMethodsNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newWebhookMux(&mockApplier{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stripe/webhook", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
