package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides the shared plumbing for tenant-scoped repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a Base that runs on tx. A nil tx keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Tenant restricts model queries to one store.
func (b Base) Tenant(ctx context.Context, storeID uuid.UUID) *gorm.DB {
	return b.DB(ctx).Where("store_id = ?", storeID)
}

// Live restricts model queries to one store and hides soft-deleted rows.
func (b Base) Live(ctx context.Context, storeID uuid.UUID) *gorm.DB {
	return b.Tenant(ctx, storeID).Where("deleted_at IS NULL")
}

// SoftDelete stamps deleted_at on a live row. It returns gorm.ErrRecordNotFound
// when nothing matched.
func (b Base) SoftDelete(ctx context.Context, model any, storeID, id uuid.UUID) error {
	res := b.Live(ctx, storeID).Model(model).Where("id = ?", id).Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
