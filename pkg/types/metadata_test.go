package types

import (
	"strings"
	"testing"
)

func TestPaymentMetadataValidate(t *testing.T) {
	cases := []struct {
		name    string
		meta    *PaymentMetadata
		wantErr bool
	}{
		{name: "nil", meta: nil},
		{name: "charge", meta: ChargeMetadata("ok")},
		{name: "failure without reason", meta: &PaymentMetadata{Kind: PaymentMetadataFailure}, wantErr: true},
		{name: "intent", meta: StripeIntentMetadata("pi_123", "requires_payment_method")},
		{name: "intent without id", meta: &PaymentMetadata{Kind: PaymentMetadataStripeIntent}, wantErr: true},
		{name: "refund", meta: RefundMetadata("10.00", "re_1")},
		{name: "unknown kind", meta: &PaymentMetadata{Kind: "mystery"}, wantErr: true},
	}

	for _, tc := range cases {
		err := tc.meta.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestPaymentMetadataValueRejectsInvalid(t *testing.T) {
	meta := &PaymentMetadata{Kind: "mystery"}
	if _, err := meta.Value(); err == nil {
		t.Fatal("expected Value to reject unknown kind")
	}
}

func TestPaymentMetadataScanFromString(t *testing.T) {
	var meta PaymentMetadata
	if err := meta.Scan(`{"kind":"stripe_intent","intentId":"pi_9"}`); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if meta.Kind != PaymentMetadataStripeIntent || meta.IntentID != "pi_9" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if err := meta.Scan(42); err == nil {
		t.Fatal("expected unsupported scan type error")
	}
}

func TestShipmentMetadataValidate(t *testing.T) {
	if err := (&ShipmentMetadata{Kind: ShipmentMetadataLabel}).Validate(); err == nil {
		t.Fatal("expected label id to be required")
	}
	if err := (&ShipmentMetadata{Kind: ShipmentMetadataManual}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestAddressValueAndNormalize(t *testing.T) {
	addr := Address{Line1: " 1 Main St ", City: "Austin", PostalCode: "78701", Country: "us"}.Normalize()
	if addr.Line1 != "1 Main St" || addr.Country != "US" {
		t.Fatalf("unexpected normalized address %+v", addr)
	}

	val, err := addr.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	var decoded Address
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if decoded.City != "Austin" {
		t.Fatalf("expected city Austin, got %q", decoded.City)
	}

	if _, err := (Address{}).Value(); err == nil || !strings.Contains(err.Error(), "line1") {
		t.Fatalf("expected missing line1 error, got %v", err)
	}
}
