package gateway

import (
	"context"
	"strings"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeClient opens payment intents. It is constructed once and injected;
// the SDK's package-level key is never set.
type StripeClient struct {
	api *client.API
}

func NewStripeClient(cfg config.GatewayConfig) *StripeClient {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIBaseURL != "" {
		backendCfg.URL = stripe.String(cfg.APIBaseURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	}

	return &StripeClient{api: client.New(cfg.SecretKey, backends)}
}

// CreatePaymentIntent uses the enrollment id as idempotency key so a
// retried checkout never opens a second intent.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, req application.PaymentIntentRequest) (*application.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.Amount),
		Currency: stripe.String(req.Amount.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.EnrollmentID)
	params.AddMetadata(domain.MetadataEnrollmentID, req.EnrollmentID)
	params.AddMetadata(domain.MetadataClassIDs, strings.Join(req.ClassIDs, ","))
	if req.BookingDate != "" {
		params.AddMetadata(domain.MetadataBookingDate, req.BookingDate)
	}
	if req.IsTrial {
		params.AddMetadata(domain.MetadataIsTrial, "true")
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fromStripeError(err)
	}

	return &application.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}
