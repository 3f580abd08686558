package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type Repository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Shipment, error)
	FindByTrackingNumber(ctx context.Context, storeID uuid.UUID, trackingNumber string) (*models.Shipment, error)
	ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]models.Shipment, error)
	UpdateFields(ctx context.Context, storeID, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.DB(ctx).Create(shipment).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.Tenant(ctx, storeID).Where("id = ?", id).First(&shipment).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByTrackingNumber(ctx context.Context, storeID uuid.UUID, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.Tenant(ctx, storeID).
		Where("tracking_number = ?", trackingNumber).
		Order("created_at DESC").
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.Tenant(ctx, storeID).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateFields(ctx context.Context, storeID, id uuid.UUID, updates map[string]any) error {
	res := r.Tenant(ctx, storeID).Model(&models.Shipment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
