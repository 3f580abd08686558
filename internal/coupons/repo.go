package coupons

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository defines coupon persistence. Every query is scoped to a store.
type Repository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*models.Coupon, error)
	FindActiveByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Coupon, error)
	Update(ctx context.Context, storeID, id uuid.UUID, updates map[string]any) error
	IncrementUsage(ctx context.Context, storeID, id uuid.UUID) error
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.DB(ctx).Create(coupon).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error) {
	return r.first(r.Live(ctx, storeID).Where("id = ?", id))
}

func (r *repository) FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*models.Coupon, error) {
	return r.first(r.Live(ctx, storeID).Where("code = ?", code))
}

func (r *repository) FindActiveByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error) {
	return r.first(r.Live(ctx, storeID).Where("id = ? AND status = ?", id, enums.CouponStatusActive))
}

func (r *repository) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Coupon, error) {
	query, err := pagination.Apply(r.Live(ctx, storeID), params)
	if err != nil {
		return nil, err
	}
	var rows []models.Coupon
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, storeID, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.Live(ctx, storeID).Model(&models.Coupon{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) IncrementUsage(ctx context.Context, storeID, id uuid.UUID) error {
	return r.Update(ctx, storeID, id, map[string]any{"usage_count": gorm.Expr("usage_count + 1")})
}

func (r *repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return r.SoftDelete(ctx, &models.Coupon{}, storeID, id)
}

func (r *repository) first(query *gorm.DB) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := query.First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}
