package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type CreateInput struct {
	Code       string          `json:"code" validate:"required,max=64"`
	Type       string          `json:"type" validate:"required"`
	Value      decimal.Decimal `json:"value"`
	UsageLimit *int            `json:"usageLimit,omitempty" validate:"omitempty,gte=0"`
	ValidFrom  *time.Time      `json:"validFrom,omitempty"`
	ValidUntil *time.Time      `json:"validUntil,omitempty"`
	Status     string          `json:"status,omitempty"`
}

// UpdateInput applies only the fields that are present.
type UpdateInput struct {
	Code       *string          `json:"code,omitempty"`
	Type       *string          `json:"type,omitempty"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	UsageLimit *int             `json:"usageLimit,omitempty" validate:"omitempty,gte=0"`
	ValidFrom  *time.Time       `json:"validFrom,omitempty"`
	ValidUntil *time.Time       `json:"validUntil,omitempty"`
	Status     *string          `json:"status,omitempty"`
}

type CouponDTO struct {
	ID         uuid.UUID          `json:"id"`
	Code       string             `json:"code"`
	Type       enums.CouponType   `json:"type"`
	Value      decimal.Decimal    `json:"value"`
	UsageLimit *int               `json:"usageLimit,omitempty"`
	UsageCount int                `json:"usageCount"`
	ValidFrom  *time.Time         `json:"validFrom,omitempty"`
	ValidUntil *time.Time         `json:"validUntil,omitempty"`
	Status     enums.CouponStatus `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func FromModel(m models.Coupon) CouponDTO {
	return CouponDTO{
		ID:         m.ID,
		Code:       m.Code,
		Type:       m.Type,
		Value:      m.Value,
		UsageLimit: m.UsageLimit,
		UsageCount: m.UsageCount,
		ValidFrom:  m.ValidFrom,
		ValidUntil: m.ValidUntil,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
