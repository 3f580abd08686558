package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// ItemInput is one requested line. Price is taken from the caller as given.
type ItemInput struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	VariantID *uuid.UUID      `json:"variantId,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type CreateInput struct {
	CustomerID      uuid.UUID       `json:"customerId" validate:"required"`
	Items           []ItemInput     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.Address   `json:"shippingAddress" validate:"required"`
	BillingAddress  types.Address   `json:"billingAddress" validate:"required"`
	CouponID        *uuid.UUID      `json:"couponId,omitempty"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Notes           *string         `json:"notes,omitempty"`
}

type UpdateInput struct {
	Status          *string        `json:"status,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
	ShippingAddress *types.Address `json:"shippingAddress,omitempty"`
	BillingAddress  *types.Address `json:"billingAddress,omitempty"`
}

type CancelInput struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ListFilters narrows order listings. Empty fields are ignored.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CustomerID    *uuid.UUID
}

type ItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	VariantID *uuid.UUID      `json:"variantId,omitempty"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type PaymentSummary struct {
	ID                   uuid.UUID            `json:"id"`
	Gateway              enums.PaymentGateway `json:"gateway"`
	GatewayTransactionID *string              `json:"gatewayTransactionId,omitempty"`
	Amount               decimal.Decimal      `json:"amount"`
	Status               enums.PaymentStatus  `json:"status"`
	CreatedAt            time.Time            `json:"createdAt"`
}

type ShipmentSummary struct {
	ID             uuid.UUID            `json:"id"`
	Carrier        enums.Carrier        `json:"carrier"`
	TrackingNumber string               `json:"trackingNumber"`
	Status         enums.ShipmentStatus `json:"status"`
}

type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	StoreID         uuid.UUID           `json:"storeId"`
	CustomerID      uuid.UUID           `json:"customerId"`
	OrderNumber     string              `json:"orderNumber"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Shipping        decimal.Decimal     `json:"shipping"`
	Tax             decimal.Decimal     `json:"tax"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	CouponID        *uuid.UUID          `json:"couponId,omitempty"`
	ShippingAddress types.Address       `json:"shippingAddress"`
	BillingAddress  types.Address       `json:"billingAddress"`
	Notes           *string             `json:"notes,omitempty"`
	CancelReason    *string             `json:"cancelReason,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	Items           []ItemDTO           `json:"items"`
	Payments        []PaymentSummary    `json:"payments,omitempty"`
	Shipments       []ShipmentSummary   `json:"shipments,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func FromModel(m models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              m.ID,
		StoreID:         m.StoreID,
		CustomerID:      m.CustomerID,
		OrderNumber:     m.OrderNumber,
		Subtotal:        m.Subtotal,
		Shipping:        m.Shipping,
		Tax:             m.Tax,
		Discount:        m.Discount,
		Total:           m.Total,
		Status:          m.Status,
		PaymentStatus:   m.PaymentStatus,
		CouponID:        m.CouponID,
		ShippingAddress: m.ShippingAddress,
		BillingAddress:  m.BillingAddress,
		Notes:           m.Notes,
		CancelReason:    m.CancelReason,
		CancelledAt:     m.CancelledAt,
		Items:           make([]ItemDTO, 0, len(m.Items)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			SKU:       item.SKU,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}
	for _, p := range m.Payments {
		dto.Payments = append(dto.Payments, PaymentSummary{
			ID:                   p.ID,
			Gateway:              p.Gateway,
			GatewayTransactionID: p.GatewayTransactionID,
			Amount:               p.Amount,
			Status:               p.Status,
			CreatedAt:            p.CreatedAt,
		})
	}
	for _, s := range m.Shipments {
		dto.Shipments = append(dto.Shipments, ShipmentSummary{
			ID:             s.ID,
			Carrier:        s.Carrier,
			TrackingNumber: s.TrackingNumber,
			Status:         s.Status,
		})
	}
	return dto
}
