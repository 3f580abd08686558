package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Order is never deleted; cancellation is a status.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID         uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	OrderNumber     string              `gorm:"column:order_number;not null;index"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Shipping        decimal.Decimal     `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Tax             decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Discount        decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	CouponID        *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;not null"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;not null"`
	Notes           *string             `gorm:"column:notes"`
	CancelReason    *string             `gorm:"column:cancel_reason"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment           `gorm:"foreignKey:OrderID"`
	Shipments       []Shipment          `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// HasPaidPayment reports whether any loaded payment settled.
func (o *Order) HasPaidPayment() bool {
	for _, p := range o.Payments {
		if p.Status == enums.PaymentStatusPaid {
			return true
		}
	}
	return false
}

// OrderItem snapshots product name, sku and price at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	SKU       string          `gorm:"column:sku;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
