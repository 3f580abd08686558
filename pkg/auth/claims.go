package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	StoreID uuid.UUID
	Role    string
	JTI     string
}

// AccessTokenClaims is the JWT presented by store operators. Every request is
// scoped to StoreID.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	StoreID uuid.UUID `json:"store_id"`
	Role    string    `json:"role"`
	jwt.RegisteredClaims
}
