package orders

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo/repotest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type fixture struct {
	db        *gorm.DB
	svc       Service
	repo      Repository
	store     *models.Store
	customer  *models.Customer
	product   *models.Product
	shipments *stubShipments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.Open(t)
	store := repotest.SeedStore(t, db)
	couponSvc, err := coupons.NewService(coupons.NewRepository(db))
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		repo:      NewRepository(db),
		store:     store,
		customer:  repotest.SeedCustomer(t, db, store.ID),
		product:   repotest.SeedProduct(t, db, store.ID, "50.00"),
		shipments: &stubShipments{},
	}
	f.svc, err = NewService(ServiceParams{
		Repo:      f.repo,
		Customers: customers.NewRepository(db),
		Products:  products.NewRepository(db),
		Coupons:   couponSvc,
		Shipments: f.shipments,
		Logger:    logger.Nop(),
		Clock:     func() time.Time { return time.UnixMilli(1767225600000) },
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) input(price string, qty int) CreateInput {
	return CreateInput{
		CustomerID:      f.customer.ID,
		Items:           []ItemInput{{ProductID: f.product.ID, Quantity: qty, Price: decimal.RequireFromString(price)}},
		ShippingAddress: address(),
		BillingAddress:  address(),
		Shipping:        decimal.NewFromInt(10),
		Tax:             decimal.NewFromInt(5),
	}
}

func (f *fixture) seedCoupon(t *testing.T, couponType enums.CouponType, value int64, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	c := &models.Coupon{StoreID: f.store.ID, Code: uuid.NewString()[:8], Type: couponType, Value: decimal.NewFromInt(value), Status: enums.CouponStatusActive}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func TestCreateComputesTotalsWithPercentageCoupon(t *testing.T) {
	f := newFixture(t)
	coupon := f.seedCoupon(t, enums.CouponTypePercentage, 10, nil)
	input := f.input("50.00", 2)
	input.CouponID = &coupon.ID

	order, err := f.svc.Create(context.Background(), f.store.ID, input)
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(10)), "discount %s", order.Discount)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(105)), "total %s", order.Total)
	assert.Equal(t, "ORD-1767225600000", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, f.product.SKU, order.Items[0].SKU)

	stored, err := f.svc.Get(context.Background(), f.store.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(105)))
	assert.Equal(t, "US", stored.ShippingAddress.Country)
}

func TestCreateUsesCallerPriceAndLeavesStock(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(context.Background(), f.store.ID, f.input("1.00", 3))
	require.NoError(t, err)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(3)), "caller price should win, got %s", order.Subtotal)

	var product models.Product
	require.NoError(t, f.db.First(&product, "id = ?", f.product.ID).Error)
	assert.Equal(t, 10, product.Stock)
}

func TestCreateAllowsNegativeTotal(t *testing.T) {
	f := newFixture(t)
	coupon := f.seedCoupon(t, enums.CouponTypeFixed, 500, nil)
	input := f.input("10.00", 1)
	input.CouponID = &coupon.ID

	order, err := f.svc.Create(context.Background(), f.store.ID, input)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(-475)), "total %s", order.Total)
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Shipping).Add(order.Tax).Sub(order.Discount)))
}

func TestCreateAppliesExhaustedCouponWithoutIncrementing(t *testing.T) {
	f := newFixture(t)
	limit := 1
	past := time.Now().Add(-48 * time.Hour)
	coupon := f.seedCoupon(t, enums.CouponTypeFixed, 5, func(c *models.Coupon) {
		c.UsageLimit = &limit
		c.UsageCount = 1
		c.ValidUntil = &past
	})
	input := f.input("10.00", 1)
	input.CouponID = &coupon.ID

	order, err := f.svc.Create(context.Background(), f.store.ID, input)
	require.NoError(t, err)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(5)))

	var stored models.Coupon
	require.NoError(t, f.db.First(&stored, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, stored.UsageCount)
}

func TestCreateIgnoresInactiveCoupon(t *testing.T) {
	f := newFixture(t)
	coupon := f.seedCoupon(t, enums.CouponTypeFixed, 5, func(c *models.Coupon) { c.Status = enums.CouponStatusInactive })
	input := f.input("10.00", 1)
	input.CouponID = &coupon.ID

	order, err := f.svc.Create(context.Background(), f.store.ID, input)
	require.NoError(t, err)
	assert.True(t, order.Discount.IsZero())
}

func TestCreateRejectsForeignCustomerAndProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.input("10.00", 1)
	input.CustomerID = uuid.New()
	_, err := f.svc.Create(ctx, f.store.ID, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "customer not found", typed.Message())

	otherStore := repotest.SeedStore(t, f.db)
	foreign := repotest.SeedProduct(t, f.db, otherStore.ID, "1.00")
	input = f.input("10.00", 1)
	input.Items = append(input.Items, ItemInput{ProductID: foreign.ID, Quantity: 1, Price: decimal.NewFromInt(1)})
	_, err = f.svc.Create(ctx, f.store.ID, input)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Contains(t, typed.Message(), foreign.ID.String())

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateDoesNotRecomputeTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, f.store.ID, f.input("10.00", 1))
	require.NoError(t, err)

	status := "processing"
	notes := "leave at door"
	updated, err := f.svc.Update(ctx, f.store.ID, order.ID, UpdateInput{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.True(t, updated.Total.Equal(order.Total))

	bad := "lost"
	_, err = f.svc.Update(ctx, f.store.ID, order.ID, UpdateInput{Status: &bad})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, f.store.ID, f.input("10.00", 1))
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.Shipment{OrderID: order.ID, StoreID: f.store.ID, Carrier: enums.CarrierUPS, TrackingNumber: "UPS1", Status: enums.ShipmentStatusInTransit}).Error)

	reason := "changed mind"
	cancelled, err := f.svc.Cancel(ctx, f.store.ID, order.ID, CancelInput{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, reason, *cancelled.CancelReason)
	assert.Equal(t, []uuid.UUID{order.ID}, f.shipments.orders)

	_, err = f.svc.Cancel(ctx, f.store.ID, order.ID, CancelInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelKeepsOrderWhenCarrierCancelFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buf := &bytes.Buffer{}
	couponSvc, err := coupons.NewService(coupons.NewRepository(f.db))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:      f.repo,
		Customers: customers.NewRepository(f.db),
		Products:  products.NewRepository(f.db),
		Coupons:   couponSvc,
		Shipments: &stubShipments{err: errors.New("carrier unavailable")},
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: buf}),
	})
	require.NoError(t, err)

	order, err := f.svc.Create(ctx, f.store.ID, f.input("10.00", 1))
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.Shipment{OrderID: order.ID, StoreID: f.store.ID, Carrier: enums.CarrierDHL, TrackingNumber: "DHL1", Status: enums.ShipmentStatusInTransit}).Error)

	cancelled, err := svc.Cancel(ctx, f.store.ID, order.ID, CancelInput{})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.Contains(t, buf.String(), "order.cancel_shipments_failed")
	assert.Contains(t, buf.String(), "carrier unavailable")
}

func TestCancelRejectsShippedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, status := range []enums.OrderStatus{enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.OrderStatusReturned} {
		order, err := f.svc.Create(ctx, f.store.ID, f.input("10.00", 1))
		require.NoError(t, err)
		require.NoError(t, f.repo.UpdateFields(ctx, f.store.ID, order.ID, map[string]any{"status": status}))

		_, err = f.svc.Cancel(ctx, f.store.ID, order.ID, CancelInput{})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "status %s", status)
	}
}

func TestListFiltersAndTenantScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Create(ctx, f.store.ID, f.input("10.00", 1))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.store.ID, f.input("20.00", 1))
	require.NoError(t, err)
	require.NoError(t, f.repo.UpdateFields(ctx, f.store.ID, first.ID, map[string]any{"payment_status": enums.PaymentStatusPaid}))

	all, err := f.svc.List(ctx, f.store.ID, ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	paid := enums.PaymentStatusPaid
	filtered, err := f.svc.List(ctx, f.store.ID, ListFilters{PaymentStatus: &paid}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, first.ID, filtered.Items[0].ID)

	other, err := f.svc.List(ctx, uuid.New(), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	_, err = f.svc.Get(ctx, uuid.New(), first.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

type stubShipments struct {
	orders []uuid.UUID
	err    error
}

func (s *stubShipments) CancelOrderShipments(_ context.Context, _ uuid.UUID, orderID uuid.UUID) error {
	s.orders = append(s.orders, orderID)
	return s.err
}

func address() types.Address {
	return types.Address{FirstName: "Ada", Line1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701"}
}
