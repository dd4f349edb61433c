package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
)

var (
	// ErrInvalidSignature means the payload was not signed with the webhook secret.
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	// ErrInvalidEvent means the payload verified but could not be decoded.
	ErrInvalidEvent = errors.New("invalid gateway event")
)

type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}

// fromStripeError converts SDK errors so callers never import stripe types.
func fromStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}

	code := string(stripeErr.Code)
	if code == "" {
		code = string(stripeErr.Type)
	}
	return &GatewayError{
		Code:       code,
		Message:    stripeErr.Msg,
		StatusCode: stripeErr.HTTPStatusCode,
	}
}
