package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type VariantInput struct {
	Name  string          `json:"name" validate:"required"`
	SKU   string          `json:"sku" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

type CreateInput struct {
	Name     string          `json:"name" validate:"required,max=200"`
	SKU      string          `json:"sku" validate:"required,max=64"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock" validate:"gte=0"`
	Status   string          `json:"status,omitempty"`
	Variants []VariantInput  `json:"variants,omitempty" validate:"dive"`
}

type VariantDTO struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type ProductDTO struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	SKU       string              `json:"sku"`
	Price     decimal.Decimal     `json:"price"`
	Stock     int                 `json:"stock"`
	Status    enums.ProductStatus `json:"status"`
	Variants  []VariantDTO        `json:"variants"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func FromModel(m models.Product) ProductDTO {
	dto := ProductDTO{
		ID:        m.ID,
		Name:      m.Name,
		SKU:       m.SKU,
		Price:     m.Price,
		Stock:     m.Stock,
		Status:    m.Status,
		Variants:  make([]VariantDTO, 0, len(m.Variants)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, v := range m.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{ID: v.ID, Name: v.Name, SKU: v.SKU, Price: v.Price, Stock: v.Stock})
	}
	return dto
}
