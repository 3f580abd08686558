package stripepay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	metadataOrderID = "orderId"
	metadataStoreID = "storeId"
)

type storeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type decrypter interface {
	Decrypt(encoded string) (string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventGuard interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Service talks to Stripe with each tenant's own credentials.
type Service interface {
	ClientForStore(ctx context.Context, storeID uuid.UUID) (pkgstripe.IntentClient, error)
	CreatePaymentIntent(ctx context.Context, storeID uuid.UUID, input IntentInput) (*IntentResult, error)
	HandleWebhook(ctx context.Context, storeID uuid.UUID, payload []byte, signature string) (*WebhookResult, error)
}

// ServiceParams wires the Stripe service. Guard and Tx are optional; with Tx
// set, webhook writes to payments and the order commit together.
type ServiceParams struct {
	Stores          storeFinder
	Cipher          decrypter
	Factory         pkgstripe.ClientFactory
	Orders          orders.Repository
	Payments        payments.Repository
	Guard           eventGuard
	Tx              txRunner
	Logger          *logger.Logger
	DefaultCurrency string
	Clock           func() time.Time
}

type service struct {
	stores   storeFinder
	cipher   decrypter
	factory  pkgstripe.ClientFactory
	orders   orders.Repository
	payments payments.Repository
	guard    eventGuard
	tx       txRunner
	logg     *logger.Logger
	currency string
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Stores == nil:
		return nil, fmt.Errorf("store repository required")
	case params.Cipher == nil:
		return nil, fmt.Errorf("credential cipher required")
	case params.Factory == nil:
		return nil, fmt.Errorf("stripe client factory required")
	case params.Orders == nil:
		return nil, fmt.Errorf("order repository required")
	case params.Payments == nil:
		return nil, fmt.Errorf("payment repository required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.DefaultCurrency))
	if currency == "" {
		currency = "usd"
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		stores:   params.Stores,
		cipher:   params.Cipher,
		factory:  params.Factory,
		orders:   params.Orders,
		payments: params.Payments,
		guard:    params.Guard,
		tx:       params.Tx,
		logg:     params.Logger,
		currency: currency,
		now:      now,
	}, nil
}

func (s *service) loadStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, db.MapError(err, "store")
	}
	return store, nil
}

// ClientForStore builds a Stripe client from the store's decrypted secret key.
func (s *service) ClientForStore(ctx context.Context, storeID uuid.UUID) (pkgstripe.IntentClient, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.Status == enums.StoreStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store is suspended")
	}
	if !store.StripeOwnershipConfirmed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe account ownership has not been confirmed")
	}
	if store.StripeAPIKey == nil || strings.TrimSpace(*store.StripeAPIKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe is not configured for this store")
	}
	apiKey, err := s.cipher.Decrypt(*store.StripeAPIKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrypt stripe api key")
	}
	client, err := s.factory.ForKey(ctx, apiKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return client, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, storeID uuid.UUID, input IntentInput) (*IntentResult, error) {
	order, err := s.orders.FindByID(ctx, storeID, input.OrderID)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	amount := order.Total
	if input.Amount != nil {
		amount = *input.Amount
	}
	cents := toCents(amount)
	if cents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.currency
	}

	client, err := s.ClientForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_id": storeID.String(),
		"order_id": order.ID.String(),
	})
	intent, err := client.CreatePaymentIntent(ctx, pkgstripe.IntentParams{
		Amount:   cents,
		Currency: currency,
		Metadata: map[string]string{
			metadataOrderID: order.ID.String(),
			metadataStoreID: storeID.String(),
		},
	})
	if err != nil {
		s.logg.Error(ctx, "stripe.intent_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe payment intent")
	}

	intentID := intent.ID
	payment := &models.Payment{
		OrderID:              order.ID,
		StoreID:              storeID,
		Gateway:              enums.PaymentGatewayStripe,
		GatewayTransactionID: &intentID,
		Amount:               amount,
		Currency:             currency,
		Status:               enums.PaymentStatusPending,
		Metadata:             types.StripeIntentMetadata(intent.ID, intent.Status),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, db.MapError(err, "payment")
	}
	s.logg.Info(s.logg.WithField(ctx, "intent_id", intent.ID), "stripe.intent_created")
	return &IntentResult{PaymentID: payment.ID, IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// HandleWebhook verifies a tenant-signed event and applies payment intent
// outcomes. A bad signature never mutates state.
func (s *service) HandleWebhook(ctx context.Context, storeID uuid.UUID, payload []byte, signature string) (*WebhookResult, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.StripeWebhookSecret == nil || strings.TrimSpace(*store.StripeWebhookSecret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe webhook secret is not configured for this store")
	}
	secret, err := s.cipher.Decrypt(*store.StripeWebhookSecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrypt stripe webhook secret")
	}
	event, err := pkgstripe.VerifyWebhook(payload, signature, secret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_id":   storeID.String(),
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})
	result := &WebhookResult{Received: true, EventID: event.ID, EventType: string(event.Type)}

	if s.guard != nil && event.ID != "" {
		seen, err := s.guard.Seen(ctx, event.ID)
		if err != nil {
			s.logg.Warn(ctx, "stripe.webhook.guard_unavailable")
		} else if seen {
			s.logg.Info(ctx, "stripe.webhook.duplicate")
			result.Duplicate = true
			return result, nil
		}
	}

	if err := s.applyEvent(ctx, storeID, event); err != nil {
		if s.guard != nil && event.ID != "" {
			if ferr := s.guard.Forget(ctx, event.ID); ferr != nil {
				s.logg.Error(ctx, "stripe.webhook.guard_release_failed", ferr)
			}
		}
		return nil, err
	}
	return result, nil
}

func (s *service) applyEvent(ctx context.Context, storeID uuid.UUID, event stripe.Event) error {
	var (
		paymentStatus enums.PaymentStatus
		orderStatus   enums.OrderStatus
	)
	switch event.Type {
	case pkgstripe.EventPaymentIntentSucceeded:
		paymentStatus, orderStatus = enums.PaymentStatusPaid, enums.OrderStatusProcessing
	case pkgstripe.EventPaymentIntentFailed:
		paymentStatus, orderStatus = enums.PaymentStatusFailed, enums.OrderStatusFailed
	default:
		s.logg.Debug(ctx, "stripe.webhook.ignored")
		return nil
	}

	intent, err := pkgstripe.DecodePaymentIntent(event)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment intent payload")
	}
	ctx = s.logg.WithField(ctx, "intent_id", intent.ID)

	metadata := types.StripeIntentMetadata(intent.ID, string(intent.Status))
	metadata.EventID = event.ID
	updates := map[string]any{
		"status":   paymentStatus,
		"metadata": metadata,
	}
	if paymentStatus == enums.PaymentStatusPaid {
		updates["paid_at"] = s.now().UTC()
	}

	apply := func(paymentRepo payments.Repository, orderRepo orders.Repository) error {
		rows, err := paymentRepo.ListByTransactionID(ctx, storeID, intent.ID)
		if err != nil {
			return db.MapError(err, "payment")
		}
		if _, err := paymentRepo.UpdateByTransactionID(ctx, storeID, intent.ID, updates); err != nil {
			return db.MapError(err, "payment")
		}

		orderID, ok := orderIDFromIntent(intent, rows)
		if !ok {
			s.logg.Warn(ctx, "stripe.webhook.order_unresolved")
			return nil
		}
		orderCtx := s.logg.WithField(ctx, "order_id", orderID.String())
		err = orderRepo.UpdateFields(ctx, storeID, orderID, map[string]any{
			"status":         orderStatus,
			"payment_status": paymentStatus,
		})
		if err != nil {
			if db.IsNotFound(err) {
				s.logg.Warn(orderCtx, "stripe.webhook.order_missing")
				return nil
			}
			return db.MapError(err, "order")
		}
		s.logg.Info(s.logg.WithFields(orderCtx, map[string]any{
			"payment_status": paymentStatus.String(),
			"payments":       len(rows),
		}), "stripe.webhook.applied")
		return nil
	}

	if s.tx == nil {
		return apply(s.payments, s.orders)
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return apply(s.payments.WithTx(tx), s.orders.WithTx(tx))
	})
}

// orderIDFromIntent prefers the intent metadata and falls back to the first
// payment recorded for the intent.
func orderIDFromIntent(intent *stripe.PaymentIntent, rows []models.Payment) (uuid.UUID, bool) {
	if raw, ok := intent.Metadata[metadataOrderID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
	}
	if len(rows) > 0 {
		return rows[0].OrderID, true
	}
	return uuid.Nil, false
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
