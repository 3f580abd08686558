package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "storefront",
	ExpirationMinutes: 30,
}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()
	storeID := uuid.New()

	token, err := MintAccessToken(testJWT, now, AccessTokenPayload{UserID: userID, StoreID: storeID})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.StoreID != storeID {
		t.Fatalf("expected store_id %s, got %s", storeID, claims.StoreID)
	}
	if claims.Role != RoleOwner {
		t.Fatalf("expected default owner role, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be generated")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: uuid.New(), StoreID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(testJWT, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New(), StoreID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	other := testJWT
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseAccessTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := AccessTokenClaims{
		StoreID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testJWT.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWT.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(testJWT, signed); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestMintRequiresStore(t *testing.T) {
	if _, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected missing store id to fail")
	}
}
