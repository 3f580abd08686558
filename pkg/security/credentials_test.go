package security

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func newCipher(t *testing.T, secret string) *CredentialCipher {
	t.Helper()
	c, err := NewCredentialCipher(context.Background(), secret, nil)
	if err != nil {
		t.Fatalf("NewCredentialCipher: %v", err)
	}
	return c
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newCipher(t, "super-secret")

	enc, err := c.Encrypt("sk_test_123")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if parts := strings.Split(enc, ":"); len(parts) != 3 || len(parts[0]) != 24 || len(parts[1]) != 32 {
		t.Fatalf("unexpected encoding %q", enc)
	}

	plain, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "sk_test_123" {
		t.Fatalf("expected sk_test_123, got %q", plain)
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	c := newCipher(t, "super-secret")
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	if a == b {
		t.Fatal("expected distinct ciphertexts for repeated plaintext")
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	c := newCipher(t, "super-secret")
	for _, in := range []string{"", "abc", "a:b", "zz:00:00", "00:00:00:00"} {
		if _, err := c.Decrypt(in); !errors.Is(err, ErrMalformedCiphertext) {
			t.Fatalf("Decrypt(%q) expected malformed error, got %v", in, err)
		}
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	enc, err := newCipher(t, "key-one").Encrypt("whsec_abc")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := newCipher(t, "key-two").Decrypt(enc); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected decrypt failure, got %v", err)
	}
}

func TestDecryptDetectsTampering(t *testing.T) {
	c := newCipher(t, "super-secret")
	enc, _ := c.Encrypt("sk_live_abc")
	parts := strings.Split(enc, ":")
	last := parts[2]
	flipped := "0"
	if last[0] == '0' {
		flipped = "1"
	}
	parts[2] = flipped + last[1:]
	if _, err := c.Decrypt(strings.Join(parts, ":")); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected tamper detection, got %v", err)
	}
}

func TestFallbackSecretLogsWarning(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	c, err := NewCredentialCipher(context.Background(), "  ", logg)
	if err != nil {
		t.Fatalf("NewCredentialCipher: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("insecure fallback key")) {
		t.Fatalf("expected fallback warning, got %s", buf.String())
	}

	enc, _ := c.Encrypt("x")
	if got, err := newCipher(t, insecureFallbackSecret).Decrypt(enc); err != nil || got != "x" {
		t.Fatalf("fallback key should match the hardcoded secret: %v", err)
	}
}
