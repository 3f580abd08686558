package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Payment records one attempt against a gateway. Failed attempts are kept.
type Payment struct {
	ID                   uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	StoreID              uuid.UUID              `gorm:"column:store_id;type:uuid;not null;index"`
	Gateway              enums.PaymentGateway   `gorm:"column:gateway;type:text;not null"`
	GatewayTransactionID *string                `gorm:"column:gateway_transaction_id;index"`
	Amount               decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency             string                 `gorm:"column:currency;type:text;not null;default:'usd'"`
	Status               enums.PaymentStatus    `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaidAt               *time.Time             `gorm:"column:paid_at"`
	RefundedAt           *time.Time             `gorm:"column:refunded_at"`
	Metadata             *types.PaymentMetadata `gorm:"column:metadata;type:jsonb"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
