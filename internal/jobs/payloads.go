package jobs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentReceipt is enqueued after a payment settles.
type PaymentReceipt struct {
	StoreID   uuid.UUID       `json:"storeId"`
	OrderID   uuid.UUID       `json:"orderId"`
	PaymentID uuid.UUID       `json:"paymentId"`
	Gateway   string          `json:"gateway"`
	Amount    decimal.Decimal `json:"amount"`
}

// CatalogImport carries a CSV document with the columns name,sku,price,stock.
type CatalogImport struct {
	StoreID uuid.UUID `json:"storeId"`
	CSV     string    `json:"csv"`
}
