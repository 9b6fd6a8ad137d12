package payments

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/config"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// CardProcessor creates payment intents whose amount is fixed on the server.
// The buyer then confirms the card payment against the processor directly.
type CardProcessor interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, orderID string) (string, error)
}

// StripeClient creates PaymentIntents through the Stripe SDK.
type StripeClient struct {
	intents paymentintent.Client
}

// NewStripeClient creates a Stripe client on its own backend, so the base URL
// and http client never leak into the SDK's global state. Calls are bounded by
// their context and not retried.
func NewStripeClient(cfg config.Stripe, httpClient *http.Client) *StripeClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        httpClient,
		URL:               stripe.String(strings.TrimRight(cfg.BaseAPIURL, "/")),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return &StripeClient{
		intents: paymentintent.Client{B: backend, Key: cfg.SecretKey},
	}
}

// CreatePaymentIntent creates (or, for a repeated order id and amount,
// returns) the payment intent of an order and hands back its client secret.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, orderID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)
	params.SetIdempotencyKey("pi-" + orderID + "-" + strconv.FormatInt(amountMinor, 10))

	intent, err := c.intents.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: stripe create payment intent: %v", ErrProviderUnavailable, err)
	}
	if intent.ClientSecret == "" {
		return "", fmt.Errorf("%w: stripe returned no client secret", ErrProviderUnavailable)
	}
	return intent.ClientSecret, nil
}
