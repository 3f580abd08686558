package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists payment attempts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]models.Payment, error)
	ListByTransactionID(ctx context.Context, storeID uuid.UUID, transactionID string) ([]models.Payment, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateByTransactionID(ctx context.Context, storeID uuid.UUID, transactionID string, updates map[string]any) (int64, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.Tenant(ctx, storeID).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.Tenant(ctx, storeID).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByTransactionID(ctx context.Context, storeID uuid.UUID, transactionID string) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.Tenant(ctx, storeID).
		Where("gateway_transaction_id = ?", transactionID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateByTransactionID updates every payment of the store carrying the
// gateway transaction id and reports how many rows changed.
func (r *repository) UpdateByTransactionID(ctx context.Context, storeID uuid.UUID, transactionID string, updates map[string]any) (int64, error) {
	res := r.Tenant(ctx, storeID).Model(&models.Payment{}).
		Where("gateway_transaction_id = ?", transactionID).
		Updates(updates)
	return res.RowsAffected, res.Error
}
