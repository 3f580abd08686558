package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new store row. Store onboarding lives outside this
// service; tooling and tests use it directly.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.DB(ctx).Create(store).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// UpdateStripeSettings replaces the encrypted credentials and clears the
// ownership confirmation.
func (r *Repository) UpdateStripeSettings(ctx context.Context, id uuid.UUID, apiKey string, webhookSecret *string) error {
	return r.updateStore(ctx, id, map[string]any{
		"stripe_api_key":             apiKey,
		"stripe_webhook_secret":      webhookSecret,
		"stripe_ownership_confirmed": false,
	})
}

func (r *Repository) SetStripeOwnershipConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error {
	return r.updateStore(ctx, id, map[string]any{"stripe_ownership_confirmed": confirmed})
}

func (r *Repository) updateStore(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB(ctx).Model(&models.Store{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
