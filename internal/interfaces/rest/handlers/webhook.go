package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/DanielPopoola/classbook/internal/infrastructure/gateway"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest"
)

type EventVerifier interface {
	Verify(payload []byte, signature string) (domain.GatewayEvent, error)
}

type EventApplier interface {
	Apply(ctx context.Context, ev domain.GatewayEvent) (services.Outcome, error)
}

// WebhookHandler receives gateway events. Responses follow the gateway's
// retry contract: 400 is final, 500 asks for redelivery.
type WebhookHandler struct {
	verifier EventVerifier
	applier  EventApplier
	logger   *slog.Logger
}

func NewWebhookHandler(verifier EventVerifier, applier EventApplier, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, applier: applier, logger: logger}
}

type webhookError struct {
	Error string `json:"error"`
}

type webhookAck struct {
	Received bool `json:"received"`
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		rest.WriteJSON(w, http.StatusMethodNotAllowed, webhookError{Error: "method not allowed"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("webhook body unreadable", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, webhookError{Error: "unreadable request body"})
		return
	}

	ev, err := h.verifier.Verify(payload, r.Header.Get(gateway.SignatureHeader))
	if err != nil {
		h.logger.Warn("webhook rejected", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, webhookError{Error: "Webhook Error: " + err.Error()})
		return
	}

	logger := h.logger.With("event_id", ev.ID, "event_type", ev.Type)

	outcome, err := h.applier.Apply(r.Context(), ev)
	if err != nil {
		logger.Error("webhook processing failed", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, webhookError{Error: "Webhook processing failed"})
		return
	}

	logger.Info("webhook handled", "outcome", outcome)
	rest.WriteJSON(w, http.StatusOK, webhookAck{Received: true})
}
