package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const SignatureHeader = "Stripe-Signature"

// WebhookVerifier checks gateway signatures and reduces verified events to
// domain.GatewayEvent.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
	logger    *slog.Logger
}

func NewWebhookVerifier(cfg config.GatewayConfig, logger *slog.Logger) *WebhookVerifier {
	return &WebhookVerifier{
		secret:    cfg.WebhookSecret,
		tolerance: cfg.Tolerance,
		logger:    logger,
	}
}

func (v *WebhookVerifier) Verify(payload []byte, signature string) (domain.GatewayEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.GatewayEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return v.toGatewayEvent(event)
}

func (v *WebhookVerifier) toGatewayEvent(event stripe.Event) (domain.GatewayEvent, error) {
	out := domain.GatewayEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		Kind:      domain.ParseEventKind(string(event.Type)),
		CreatedAt: time.Unix(event.Created, 0).UTC(),
	}
	if event.ID == "" {
		return out, fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, fmt.Errorf("%w: missing data object", ErrInvalidEvent)
	}

	raw := event.Data.Raw
	switch out.Kind {
	case domain.EventPaymentIntentCreated,
		domain.EventPaymentIntentSucceeded,
		domain.EventPaymentIntentFailed,
		domain.EventPaymentIntentCanceled,
		domain.EventPaymentIntentRequiresAction:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(raw, &pi); err != nil {
			return out, fmt.Errorf("%w: payment intent: %v", ErrInvalidEvent, err)
		}
		amount := pi.AmountReceived
		if amount == 0 {
			amount = pi.Amount
		}
		out.ObjectID = pi.ID
		out.PaymentIntentID = pi.ID
		out.Metadata = pi.Metadata
		out.Amount = domain.Money{Amount: amount, Currency: string(pi.Currency)}

	case domain.EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(raw, &ch); err != nil {
			return out, fmt.Errorf("%w: charge: %v", ErrInvalidEvent, err)
		}
		out.ObjectID = ch.ID
		if ch.PaymentIntent != nil {
			out.PaymentIntentID = ch.PaymentIntent.ID
		}
		out.Metadata = ch.Metadata
		out.Amount = domain.Money{Amount: ch.AmountRefunded, Currency: string(ch.Currency)}

	case domain.EventChargeDisputeCreated:
		var d stripe.Dispute
		if err := json.Unmarshal(raw, &d); err != nil {
			return out, fmt.Errorf("%w: dispute: %v", ErrInvalidEvent, err)
		}
		out.ObjectID = d.ID
		if d.PaymentIntent != nil {
			out.PaymentIntentID = d.PaymentIntent.ID
		}
		out.Metadata = d.Metadata
		out.Amount = domain.Money{Amount: d.Amount, Currency: string(d.Currency)}

	default:
		var obj struct {
			ID string `json:"id"`
		}
		// Unhandled kinds are acknowledged either way; the object id is
		// only carried for logging.
		if err := json.Unmarshal(raw, &obj); err != nil {
			v.logger.Debug("unreadable object on unhandled event",
				"event_id", event.ID,
				"event_type", out.Type,
				"error", err,
			)
		}
		out.ObjectID = obj.ID
	}

	return out, nil
}
