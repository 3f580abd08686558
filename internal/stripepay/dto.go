package stripepay

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntentInput creates an intent for the order total unless Amount is set.
type IntentInput struct {
	OrderID  uuid.UUID        `json:"orderId" validate:"required"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency,omitempty"`
}

type IntentResult struct {
	PaymentID    uuid.UUID `json:"paymentId"`
	IntentID     string    `json:"intentId"`
	ClientSecret string    `json:"clientSecret"`
}

type WebhookResult struct {
	Received  bool   `json:"received"`
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Duplicate bool   `json:"duplicate,omitempty"`
}
