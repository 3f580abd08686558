package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// SignatureHeader is the header Stripe signs webhook payloads with.
const SignatureHeader = "Stripe-Signature"

// Event types handled by the storefront.
const (
	EventPaymentIntentSucceeded = stripe.EventTypePaymentIntentSucceeded
	EventPaymentIntentFailed    = stripe.EventTypePaymentIntentPaymentFailed
)

// VerifyWebhook checks the signature against secret and decodes the event.
// Tenants pin their own API versions, so version mismatches are ignored.
func VerifyWebhook(payload []byte, signature, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// DecodePaymentIntent extracts the payment intent carried by an event.
func DecodePaymentIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	if event.Data == nil {
		return nil, fmt.Errorf("event %s has no data", event.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	return &pi, nil
}
