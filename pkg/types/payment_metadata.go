package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type PaymentMetadataKind string

const (
	PaymentMetadataCharge       PaymentMetadataKind = "gateway_charge"
	PaymentMetadataFailure      PaymentMetadataKind = "gateway_failure"
	PaymentMetadataStripeIntent PaymentMetadataKind = "stripe_intent"
	PaymentMetadataRefund       PaymentMetadataKind = "refund"
)

// PaymentMetadata is a tagged record; which fields are meaningful depends on Kind.
type PaymentMetadata struct {
	Kind PaymentMetadataKind `json:"kind"`

	// gateway_charge
	GatewayMessage string `json:"gatewayMessage,omitempty"`

	// gateway_failure
	FailureReason string `json:"failureReason,omitempty"`

	// stripe_intent
	IntentID     string `json:"intentId,omitempty"`
	IntentStatus string `json:"intentStatus,omitempty"`
	EventID      string `json:"eventId,omitempty"`

	// refund
	RefundAmount    string `json:"refundAmount,omitempty"`
	RefundReference string `json:"refundReference,omitempty"`
}

func ChargeMetadata(message string) *PaymentMetadata {
	return &PaymentMetadata{Kind: PaymentMetadataCharge, GatewayMessage: message}
}

func FailureMetadata(reason string) *PaymentMetadata {
	return &PaymentMetadata{Kind: PaymentMetadataFailure, FailureReason: reason}
}

func StripeIntentMetadata(intentID, status string) *PaymentMetadata {
	return &PaymentMetadata{Kind: PaymentMetadataStripeIntent, IntentID: intentID, IntentStatus: status}
}

func RefundMetadata(amount, reference string) *PaymentMetadata {
	return &PaymentMetadata{Kind: PaymentMetadataRefund, RefundAmount: amount, RefundReference: reference}
}

func (m *PaymentMetadata) Validate() error {
	if m == nil {
		return nil
	}
	switch m.Kind {
	case PaymentMetadataCharge:
		return nil
	case PaymentMetadataFailure:
		if m.FailureReason == "" {
			return fmt.Errorf("payment metadata: failure reason required")
		}
	case PaymentMetadataStripeIntent:
		if m.IntentID == "" {
			return fmt.Errorf("payment metadata: intent id required")
		}
	case PaymentMetadataRefund:
		if m.RefundAmount == "" {
			return fmt.Errorf("payment metadata: refund amount required")
		}
	default:
		return fmt.Errorf("payment metadata: unknown kind %q", m.Kind)
	}
	return nil
}

// Value validates and serializes the metadata to JSON.
func (m *PaymentMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// Scan decodes JSON into the metadata record.
func (m *PaymentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMetadata{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, m)
}
