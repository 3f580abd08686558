package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Coupon codes are unique per store and stored upper-cased.
type Coupon struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StoreID    uuid.UUID          `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_coupons_store_code"`
	Code       string             `gorm:"column:code;not null;uniqueIndex:idx_coupons_store_code"`
	Type       enums.CouponType   `gorm:"column:type;type:text;not null"`
	Value      decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	UsageLimit *int               `gorm:"column:usage_limit"`
	UsageCount int                `gorm:"column:usage_count;not null;default:0"`
	ValidFrom  *time.Time         `gorm:"column:valid_from"`
	ValidUntil *time.Time         `gorm:"column:valid_until"`
	Status     enums.CouponStatus `gorm:"column:status;type:text;not null;default:'ACTIVE'"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  *time.Time         `gorm:"column:deleted_at"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
