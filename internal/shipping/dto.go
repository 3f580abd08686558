package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type CreateInput struct {
	OrderID        uuid.UUID `json:"orderId" validate:"required"`
	Carrier        string    `json:"carrier" validate:"required"`
	TrackingNumber *string   `json:"trackingNumber,omitempty"`
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

type TrackingUpdateInput struct {
	TrackingNumber string `json:"trackingNumber" validate:"required"`
	Status         string `json:"status" validate:"required"`
}

type ShipmentDTO struct {
	ID             uuid.UUID               `json:"id"`
	OrderID        uuid.UUID               `json:"orderId"`
	Carrier        enums.Carrier           `json:"carrier"`
	TrackingNumber string                  `json:"trackingNumber"`
	Status         enums.ShipmentStatus    `json:"status"`
	ShippedAt      *time.Time              `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time              `json:"deliveredAt,omitempty"`
	Metadata       *types.ShipmentMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

type TrackingDTO struct {
	Shipment ShipmentDTO  `json:"shipment"`
	Tracking TrackingInfo `json:"tracking"`
}

func FromModel(m models.Shipment) ShipmentDTO {
	return ShipmentDTO{
		ID:             m.ID,
		OrderID:        m.OrderID,
		Carrier:        m.Carrier,
		TrackingNumber: m.TrackingNumber,
		Status:         m.Status,
		ShippedAt:      m.ShippedAt,
		DeliveredAt:    m.DeliveredAt,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
