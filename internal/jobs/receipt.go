package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type orderFinder interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Order, error)
}

// ReceiptHandler records the receipt notification for a paid order. It stands
// in for the outbound email sender.
type ReceiptHandler struct {
	orders orderFinder
	logg   *logger.Logger
}

func NewReceiptHandler(orders orderFinder, logg *logger.Logger) (*ReceiptHandler, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ReceiptHandler{orders: orders, logg: logg}, nil
}

func (h *ReceiptHandler) Type() string {
	return TypePaymentReceipt
}

func (h *ReceiptHandler) Handle(ctx context.Context, env Envelope) error {
	var payload PaymentReceipt
	if err := env.Decode(&payload); err != nil {
		return err
	}
	order, err := h.orders.FindByID(ctx, payload.StoreID, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	h.logg.Info(h.logg.WithFields(ctx, map[string]any{
		"store_id":     payload.StoreID.String(),
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"payment_id":   payload.PaymentID.String(),
		"gateway":      payload.Gateway,
		"amount":       payload.Amount.String(),
		"customer_id":  order.CustomerID.String(),
	}), "jobs.payment_receipt.sent")
	return nil
}
