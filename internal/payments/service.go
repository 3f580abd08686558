package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/jobs"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const defaultCurrency = "usd"

type orderStore interface {
	FindWithPayments(ctx context.Context, storeID, id uuid.UUID) (*models.Order, error)
	UpdateFields(ctx context.Context, storeID, id uuid.UUID, updates map[string]any) error
}

type enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload any) error
}

// Service charges and refunds orders through the gateway registry.
type Service interface {
	ProcessPayment(ctx context.Context, storeID uuid.UUID, input ProcessInput) (*PaymentDTO, error)
	Refund(ctx context.Context, storeID, paymentID uuid.UUID, input RefundInput) (*PaymentDTO, error)
	ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]PaymentDTO, error)
}

// ServiceParams wires the payment service. Jobs may be nil when no queue is
// configured; receipts are then skipped.
type ServiceParams struct {
	Repo     Repository
	Orders   orderStore
	Gateways *Registry
	Jobs     enqueuer
	Logger   *logger.Logger
	Currency string
	Clock    func() time.Time
}

type service struct {
	repo     Repository
	orders   orderStore
	gateways *Registry
	jobs     enqueuer
	logg     *logger.Logger
	currency string
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Gateways == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	currency := params.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		orders:   params.Orders,
		gateways: params.Gateways,
		jobs:     params.Jobs,
		logg:     params.Logger,
		currency: currency,
		now:      now,
	}, nil
}

// ProcessPayment charges the order total once. Gateway failures are recorded
// as FAILED payments and surfaced as validation errors.
func (s *service) ProcessPayment(ctx context.Context, storeID uuid.UUID, input ProcessInput) (*PaymentDTO, error) {
	order, err := s.orders.FindWithPayments(ctx, storeID, input.OrderID)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	if order.HasPaidPayment() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
	}
	gateway, err := s.gateways.Lookup(input.Gateway)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_id": storeID.String(),
		"order_id": order.ID.String(),
		"gateway":  gateway.Name().String(),
	})

	result, chargeErr := gateway.Process(ctx, ChargeRequest{
		OrderID:  order.ID,
		Amount:   order.Total,
		Currency: s.currency,
		Token:    input.Token,
	})
	if chargeErr != nil {
		failed := &models.Payment{
			OrderID:  order.ID,
			StoreID:  storeID,
			Gateway:  gateway.Name(),
			Amount:   order.Total,
			Currency: s.currency,
			Status:   enums.PaymentStatusFailed,
			Metadata: types.FailureMetadata(chargeErr.Error()),
		}
		if err := s.repo.Create(ctx, failed); err != nil {
			s.logg.Error(ctx, "payment.failure_record_failed", err)
		}
		s.logg.Warn(ctx, "payment.gateway_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, chargeErr, chargeErr.Error())
	}

	paidAt := s.now().UTC()
	txID := result.TransactionID
	payment := &models.Payment{
		OrderID:              order.ID,
		StoreID:              storeID,
		Gateway:              gateway.Name(),
		GatewayTransactionID: &txID,
		Amount:               order.Total,
		Currency:             s.currency,
		Status:               enums.PaymentStatusPaid,
		PaidAt:               &paidAt,
		Metadata:             types.ChargeMetadata(result.Message),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, db.MapError(err, "payment")
	}
	if err := s.orders.UpdateFields(ctx, storeID, order.ID, map[string]any{
		"payment_status": enums.PaymentStatusPaid,
	}); err != nil {
		return nil, db.MapError(err, "order")
	}

	s.enqueueReceipt(ctx, storeID, payment)
	s.logg.Info(s.logg.WithField(ctx, "payment_id", payment.ID.String()), "payment.paid")
	dto := FromModel(*payment)
	return &dto, nil
}

func (s *service) enqueueReceipt(ctx context.Context, storeID uuid.UUID, payment *models.Payment) {
	if s.jobs == nil {
		return
	}
	err := s.jobs.Enqueue(ctx, jobs.TypePaymentReceipt, jobs.PaymentReceipt{
		StoreID:   storeID,
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		Gateway:   payment.Gateway.String(),
		Amount:    payment.Amount,
	})
	if err != nil {
		s.logg.Error(ctx, "payment.receipt_enqueue_failed", err)
	}
}

// Refund flips a PAID payment and its order to REFUNDED. Partial amounts are
// passed to the gateway but not tracked.
func (s *service) Refund(ctx context.Context, storeID, paymentID uuid.UUID, input RefundInput) (*PaymentDTO, error) {
	payment, err := s.repo.FindByID(ctx, storeID, paymentID)
	if err != nil {
		return nil, db.MapError(err, "payment")
	}
	if payment.Status != enums.PaymentStatusPaid {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "only paid payments can be refunded (status %s)", payment.Status)
	}
	amount := payment.Amount
	if input.Amount != nil {
		amount = *input.Amount
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if amount.GreaterThan(payment.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds payment amount")
	}
	gateway, err := s.gateways.Lookup(payment.Gateway.String())
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_id":   storeID.String(),
		"order_id":   payment.OrderID.String(),
		"payment_id": payment.ID.String(),
		"gateway":    payment.Gateway.String(),
	})

	txID := ""
	if payment.GatewayTransactionID != nil {
		txID = *payment.GatewayTransactionID
	}
	result, err := gateway.Refund(ctx, RefundRequest{TransactionID: txID, Amount: amount})
	if err != nil {
		s.logg.Warn(ctx, "payment.refund_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	refundedAt := s.now().UTC()
	metadata := types.RefundMetadata(amount.StringFixed(2), result.RefundID)
	if err := s.repo.UpdateFields(ctx, payment.ID, map[string]any{
		"status":      enums.PaymentStatusRefunded,
		"refunded_at": refundedAt,
		"metadata":    metadata,
	}); err != nil {
		return nil, db.MapError(err, "payment")
	}
	if err := s.orders.UpdateFields(ctx, storeID, payment.OrderID, map[string]any{
		"payment_status": enums.PaymentStatusRefunded,
	}); err != nil {
		return nil, db.MapError(err, "order")
	}

	payment.Status = enums.PaymentStatusRefunded
	payment.RefundedAt = &refundedAt
	payment.Metadata = metadata
	s.logg.Info(s.logg.WithField(ctx, "refund_amount", amount.StringFixed(2)), "payment.refunded")
	dto := FromModel(*payment)
	return &dto, nil
}

func (s *service) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]PaymentDTO, error) {
	if _, err := s.orders.FindWithPayments(ctx, storeID, orderID); err != nil {
		return nil, db.MapError(err, "order")
	}
	rows, err := s.repo.ListByOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, db.MapError(err, "payment")
	}
	out := make([]PaymentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}
