package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// StoreDTO exposes tenant settings without the encrypted credentials.
type StoreDTO struct {
	ID                       uuid.UUID         `json:"id"`
	Name                     string            `json:"name"`
	Status                   enums.StoreStatus `json:"status"`
	StripeConfigured         bool              `json:"stripeConfigured"`
	StripeWebhookConfigured  bool              `json:"stripeWebhookConfigured"`
	StripeOwnershipConfirmed bool              `json:"stripeOwnershipConfirmed"`
	CreatedAt                time.Time         `json:"createdAt"`
	UpdatedAt                time.Time         `json:"updatedAt"`
}

// StripeSettingsInput carries plaintext credentials; they are encrypted before
// they reach the repository.
type StripeSettingsInput struct {
	APIKey        string `json:"apiKey" validate:"required"`
	WebhookSecret string `json:"webhookSecret"`
}

func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:                       m.ID,
		Name:                     m.Name,
		Status:                   m.Status,
		StripeConfigured:         hasValue(m.StripeAPIKey),
		StripeWebhookConfigured:  hasValue(m.StripeWebhookSecret),
		StripeOwnershipConfirmed: m.StripeOwnershipConfirmed,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}
