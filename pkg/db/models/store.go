package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Store is the tenant. Stripe credentials are stored encrypted.
type Store struct {
	ID                       uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name                     string            `gorm:"column:name;not null"`
	Status                   enums.StoreStatus `gorm:"column:status;type:text;not null;default:'ACTIVE'"`
	StripeAPIKey             *string           `gorm:"column:stripe_api_key"`
	StripeWebhookSecret      *string           `gorm:"column:stripe_webhook_secret"`
	StripeOwnershipConfirmed bool              `gorm:"column:stripe_ownership_confirmed;not null;default:false"`
	CreatedAt                time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s *Store) IsActive() bool {
	return s != nil && s.Status == enums.StoreStatusActive
}
