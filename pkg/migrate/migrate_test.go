package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestCouponsMigrationEnforcesPerStoreCodes(t *testing.T) {
	content := readMigration(t, "*_create_coupons.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS coupons",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_store_code ON coupons (store_id, code)",
		"CHECK (type IN ('PERCENTAGE', 'FIXED'))",
		"DROP TABLE IF EXISTS coupons",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationCascadesItems(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")
	for _, sub := range []string{
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"shipping_address jsonb NOT NULL",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Shipment Labels!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_shipment_labels.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20260101000000_one.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"20260101000000_two.sql": "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	err := ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"StatementBegin", "version already used"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestCreateRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := createAt(dir, "add index", now); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := createAt(dir, "add index", now); err == nil {
		t.Fatal("expected second create with the same version to fail")
	}
	if _, err := createAt(dir, "!!!", now); err == nil {
		t.Fatal("expected empty slug to be rejected")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil || len(matches) == 0 {
		t.Fatalf("no migration matching %s (err=%v)", pattern, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
