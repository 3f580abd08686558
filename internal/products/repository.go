package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the product together with its variants.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.Live(ctx, storeID).
		Preload("Variants").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Product, error) {
	query, err := pagination.Apply(r.Live(ctx, storeID).Preload("Variants"), params)
	if err != nil {
		return nil, err
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return r.SoftDelete(ctx, &models.Product{}, storeID, id)
}
