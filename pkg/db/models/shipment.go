package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type Shipment struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	StoreID        uuid.UUID               `gorm:"column:store_id;type:uuid;not null;index"`
	Carrier        enums.Carrier           `gorm:"column:carrier;type:text;not null"`
	TrackingNumber string                  `gorm:"column:tracking_number;not null;index"`
	Status         enums.ShipmentStatus    `gorm:"column:status;type:text;not null;default:'PENDING'"`
	ShippedAt      *time.Time              `gorm:"column:shipped_at"`
	DeliveredAt    *time.Time              `gorm:"column:delivered_at"`
	Metadata       *types.ShipmentMetadata `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shipment) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
