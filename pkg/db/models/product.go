package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type Product struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	Name      string              `gorm:"column:name;not null"`
	SKU       string              `gorm:"column:sku;not null"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int                 `gorm:"column:stock;not null;default:0"`
	Status    enums.ProductStatus `gorm:"column:status;type:text;not null;default:'ACTIVE'"`
	Variants  []ProductVariant    `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time          `gorm:"column:deleted_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type ProductVariant struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	StoreID   uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	SKU       string          `gorm:"column:sku;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
