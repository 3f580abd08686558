package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/internal/repo/repotest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func TestBaseDBBindsContext(t *testing.T) {
	db := repotest.Open(t)
	base := repo.NewBase(db)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	if got := base.DB(ctx).Statement.Context; got != ctx {
		t.Fatalf("expected context to flow through, got %v", got)
	}
	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestSoftDeleteHidesRowsAndScopesTenant(t *testing.T) {
	db := repotest.Open(t)
	base := repo.NewBase(db)
	store := repotest.SeedStore(t, db)
	customer := repotest.SeedCustomer(t, db, store.ID)
	ctx := context.Background()

	if err := base.SoftDelete(ctx, &models.Customer{}, uuid.New(), customer.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("other tenant delete should miss, got %v", err)
	}
	if err := base.SoftDelete(ctx, &models.Customer{}, store.ID, customer.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	var count int64
	if err := base.Live(ctx, store.ID).Model(&models.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected soft deleted customer hidden, got %d", count)
	}
	if err := base.SoftDelete(ctx, &models.Customer{}, store.ID, customer.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete should miss, got %v", err)
	}
}
