package security

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	keyLen   = 32
	nonceLen = 12
	tagLen   = 16

	scryptN = 16384
	scryptR = 8
	scryptP = 1

	// insecureFallbackSecret is only used when no secret is configured.
	insecureFallbackSecret = "storefront-insecure-default-secret"
)

var keySalt = []byte("storefront.credentials.v1")

var (
	ErrMalformedCiphertext = errors.New("security: malformed ciphertext")
	ErrDecryptFailed       = errors.New("security: decryption failed")
)

// CredentialCipher encrypts tenant payment credentials with AES-256-GCM.
// Ciphertexts are encoded as hex(iv):hex(tag):hex(ciphertext).
type CredentialCipher struct {
	aead cipher.AEAD
}

// NewCredentialCipher derives the AES key from secret with scrypt. An empty
// secret falls back to a hardcoded key and logs a warning each time.
func NewCredentialCipher(ctx context.Context, secret string, logg *logger.Logger) (*CredentialCipher, error) {
	if strings.TrimSpace(secret) == "" {
		if logg != nil {
			logg.Warn(ctx, "encryption secret not configured; using insecure fallback key")
		}
		secret = insecureFallbackSecret
	}

	key, err := scrypt.Key([]byte(secret), keySalt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &CredentialCipher{aead: aead}, nil
}

func (c *CredentialCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]
	return strings.Join([]string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ct),
	}, ":"), nil
}

func (c *CredentialCipher) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", ErrMalformedCiphertext
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceLen {
		return "", ErrMalformedCiphertext
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagLen {
		return "", ErrMalformedCiphertext
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	plain, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}
