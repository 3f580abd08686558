package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type ProcessInput struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Gateway string    `json:"gateway" validate:"required"`
	Token   string    `json:"token,omitempty"`
}

// RefundInput refunds the full payment amount when Amount is nil.
type RefundInput struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type PaymentDTO struct {
	ID                   uuid.UUID              `json:"id"`
	OrderID              uuid.UUID              `json:"orderId"`
	Gateway              enums.PaymentGateway   `json:"gateway"`
	GatewayTransactionID *string                `json:"gatewayTransactionId,omitempty"`
	Amount               decimal.Decimal        `json:"amount"`
	Currency             string                 `json:"currency"`
	Status               enums.PaymentStatus    `json:"status"`
	PaidAt               *time.Time             `json:"paidAt,omitempty"`
	RefundedAt           *time.Time             `json:"refundedAt,omitempty"`
	Metadata             *types.PaymentMetadata `json:"metadata,omitempty"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
}

func FromModel(m models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:                   m.ID,
		OrderID:              m.OrderID,
		Gateway:              m.Gateway,
		GatewayTransactionID: m.GatewayTransactionID,
		Amount:               m.Amount,
		Currency:             m.Currency,
		Status:               m.Status,
		PaidAt:               m.PaidAt,
		RefundedAt:           m.RefundedAt,
		Metadata:             m.Metadata,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
