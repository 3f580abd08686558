package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type customerFinder interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Customer, error)
}

type productFinder interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error)
}

type couponResolver interface {
	ActiveByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error)
}

type shipmentCanceller interface {
	CancelOrderShipments(ctx context.Context, storeID, orderID uuid.UUID) error
}

// Service implements order placement and the order-side state changes.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*OrderDTO, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, storeID uuid.UUID, filters ListFilters, params pagination.Params) (types.Page[OrderDTO], error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateInput) (*OrderDTO, error)
	Cancel(ctx context.Context, storeID, id uuid.UUID, input CancelInput) (*OrderDTO, error)
}

// ServiceParams bundles the dependencies of the order service. Shipments is
// optional; without it cancellation leaves shipments untouched.
type ServiceParams struct {
	Repo      Repository
	Customers customerFinder
	Products  productFinder
	Coupons   couponResolver
	Shipments shipmentCanceller
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	repo      Repository
	customers customerFinder
	products  productFinder
	coupons   couponResolver
	shipments shipmentCanceller
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		customers: params.Customers,
		products:  params.Products,
		coupons:   params.Coupons,
		shipments: params.Shipments,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// Create validates tenant ownership, prices the order from the submitted
// lines and persists it with its items. Coupon usage and stock are untouched.
func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if _, err := s.customers.FindByID(ctx, storeID, input.CustomerID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, db.MapError(err, "customer")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	subtotal := decimal.Zero
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		product, err := s.products.FindByID(ctx, storeID, line.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", line.ProductID)
			}
			return nil, db.MapError(err, "product")
		}
		item, err := snapshotItem(product, line)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(item.Total)
		items = append(items, item)
	}

	discount := decimal.Zero
	if input.CouponID != nil {
		coupon, err := s.coupons.ActiveByID(ctx, storeID, *input.CouponID)
		if err != nil {
			return nil, err
		}
		discount = coupons.Discount(coupon, subtotal)
	}

	total := subtotal.Add(input.Shipping).Add(input.Tax).Sub(discount)
	order := &models.Order{
		StoreID:         storeID,
		CustomerID:      input.CustomerID,
		OrderNumber:     fmt.Sprintf("ORD-%d", s.now().UnixMilli()),
		Subtotal:        subtotal,
		Shipping:        input.Shipping,
		Tax:             input.Tax,
		Discount:        discount,
		Total:           total,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		CouponID:        input.CouponID,
		ShippingAddress: input.ShippingAddress.Normalize(),
		BillingAddress:  input.BillingAddress.Normalize(),
		Notes:           input.Notes,
		Items:           items,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, db.MapError(err, "order")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"store_id":     storeID.String(),
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total":        total.String(),
	})
	if total.IsNegative() {
		s.logg.Warn(logCtx, "order.created_with_negative_total")
	} else {
		s.logg.Info(logCtx, "order.created")
	}

	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, filters ListFilters, params pagination.Params) (types.Page[OrderDTO], error) {
	rows, err := s.repo.List(ctx, storeID, filters, params)
	if err != nil {
		return types.Page[OrderDTO]{}, db.MapError(err, "order")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Build(dtos, params, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

// Update patches status, notes and addresses. Totals are left as created.
func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateInput) (*OrderDTO, error) {
	updates := map[string]any{}
	if input.Status != nil {
		status, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		updates["status"] = status
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.ShippingAddress != nil {
		updates["shipping_address"] = input.ShippingAddress.Normalize()
	}
	if input.BillingAddress != nil {
		updates["billing_address"] = input.BillingAddress.Normalize()
	}
	if len(updates) == 0 {
		return s.Get(ctx, storeID, id)
	}
	if err := s.repo.UpdateFields(ctx, storeID, id, updates); err != nil {
		return nil, db.MapError(err, "order")
	}
	return s.Get(ctx, storeID, id)
}

func (s *service) Cancel(ctx context.Context, storeID, id uuid.UUID, input CancelInput) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	if !order.Status.Cancellable() {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order in status %s cannot be cancelled", order.Status)
	}

	now := s.now().UTC()
	updates := map[string]any{
		"status":       enums.OrderStatusCancelled,
		"cancelled_at": now,
	}
	if input.Reason != nil {
		if reason := strings.TrimSpace(*input.Reason); reason != "" {
			updates["cancel_reason"] = reason
		}
	}
	if err := s.repo.UpdateFields(ctx, storeID, id, updates); err != nil {
		return nil, db.MapError(err, "order")
	}

	logCtx := s.logg.WithOrderID(ctx, id.String())
	if s.shipments != nil && len(order.Shipments) > 0 {
		// The order stays cancelled; shipments left open are reported, not rolled back.
		if err := s.shipments.CancelOrderShipments(ctx, storeID, id); err != nil {
			s.logg.Error(logCtx, "order.cancel_shipments_failed", err)
		}
	}

	s.logg.Info(logCtx, "order.cancelled")
	return s.Get(ctx, storeID, id)
}

func snapshotItem(product *models.Product, line ItemInput) (models.OrderItem, error) {
	name, sku := product.Name, product.SKU
	if line.VariantID != nil {
		variant := findVariant(product, *line.VariantID)
		if variant == nil {
			return models.OrderItem{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "variant %s not found", *line.VariantID)
		}
		name = product.Name + " - " + variant.Name
		sku = variant.SKU
	}
	return models.OrderItem{
		ProductID: product.ID,
		VariantID: line.VariantID,
		Name:      name,
		SKU:       sku,
		Price:     line.Price,
		Quantity:  line.Quantity,
		Total:     line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
	}, nil
}

func findVariant(product *models.Product, id uuid.UUID) *models.ProductVariant {
	for i := range product.Variants {
		if product.Variants[i].ID == id {
			return &product.Variants[i]
		}
	}
	return nil
}
