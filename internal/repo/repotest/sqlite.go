// Package repotest opens throwaway sqlite databases with the storefront schema.
package repotest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Open returns an isolated in-memory database migrated with every model.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func SeedStore(t testing.TB, db *gorm.DB, mutate ...func(*models.Store)) *models.Store {
	t.Helper()
	store := &models.Store{Name: "Test Store", Status: enums.StoreStatusActive}
	for _, fn := range mutate {
		fn(store)
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func SeedCustomer(t testing.TB, db *gorm.DB, storeID uuid.UUID) *models.Customer {
	t.Helper()
	customer := &models.Customer{StoreID: storeID, Email: "buyer@example.com", FirstName: "Ada", LastName: "Buyer"}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func SeedProduct(t testing.TB, db *gorm.DB, storeID uuid.UUID, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		StoreID: storeID,
		Name:    "Widget",
		SKU:     "W-" + uuid.NewString()[:8],
		Price:   decimal.RequireFromString(price),
		Stock:   10,
		Status:  enums.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// SeedOrder inserts a PENDING order for a fresh customer with the given total.
func SeedOrder(t testing.TB, db *gorm.DB, storeID uuid.UUID, total string, mutate ...func(*models.Order)) *models.Order {
	t.Helper()
	customer := SeedCustomer(t, db, storeID)
	addr := types.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	amount := decimal.RequireFromString(total)
	order := &models.Order{
		StoreID:         storeID,
		CustomerID:      customer.ID,
		OrderNumber:     "ORD-" + uuid.NewString()[:8],
		Subtotal:        amount,
		Total:           amount,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: addr,
		BillingAddress:  addr,
	}
	for _, fn := range mutate {
		fn(order)
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}
