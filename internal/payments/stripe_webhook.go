package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

// EventPaymentSucceeded is the card processor event that confirms a capture.
const EventPaymentSucceeded = string(stripe.EventTypePaymentIntentSucceeded)

// DefaultWebhookTolerance bounds the age of a signed webhook.
const DefaultWebhookTolerance = webhook.DefaultTolerance

// CardEvent is the part of a card processor webhook the orchestrator reads.
type CardEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	OrderID         string
	AmountReceived  int64
	Currency        string
	Status          string
	ReceiptEmail    string
}

// ParseWebhook verifies the Stripe-Signature header of payload against secret
// and decodes the event. Events signed longer than tolerance ago are refused.
func ParseWebhook(payload []byte, header, secret string, tolerance time.Duration) (*CardEvent, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &CardEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	out.PaymentIntentID = intent.ID
	out.OrderID = intent.Metadata["orderId"]
	out.AmountReceived = intent.AmountReceived
	out.Currency = string(intent.Currency)
	out.Status = string(intent.Status)
	out.ReceiptEmail = intent.ReceiptEmail
	return out, nil
}

// SignPayload computes a Stripe-Signature header value for payload at ts.
func SignPayload(payload []byte, secret string, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}
