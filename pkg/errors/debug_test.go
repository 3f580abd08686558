package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "coupons_store_code_key", TableName: "coupons", Message: "duplicate key value"}
	err := Wrap(CodeConflict, fmt.Errorf("insert coupon: %w", pgErr), "coupon code already exists")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "coupons_store_code_key" || d.PGTable != "coupons" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}
}

func TestDumpExtractsPqFields(t *testing.T) {
	err := fmt.Errorf("insert payment: %w", &pq.Error{Code: "23503", Constraint: "payments_order_id_fkey", Table: "payments"})

	d := Dump(err)
	if d.PGCode != "23503" || d.PGConstraint != "payments_order_id_fkey" {
		t.Fatalf("unexpected pq fields %+v", d)
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}

func TestDumpCarriesStatusForUntypedErrors(t *testing.T) {
	d := Dump(fmt.Errorf("boom"))
	if d.Code != "" {
		t.Fatalf("untyped error should not report a code, got %s", d.Code)
	}
	if d.HTTPStatus != 500 || !d.Retryable {
		t.Fatalf("expected 500 retryable, got %+v", d)
	}
	if got := StatusOf(New(CodeNotFound, "order not found")); got != 404 {
		t.Fatalf("expected 404, got %d", got)
	}
	if Retryable(New(CodeValidation, "bad")) {
		t.Fatal("validation errors are not retryable")
	}
}
