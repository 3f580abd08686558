package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type storeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	UpdateStripeSettings(ctx context.Context, id uuid.UUID, apiKey string, webhookSecret *string) error
	SetStripeOwnershipConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error
}

type encrypter interface {
	Encrypt(plaintext string) (string, error)
}

// Service exposes the tenant settings the storefront owns.
type Service interface {
	Get(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
	ConfigureStripe(ctx context.Context, storeID uuid.UUID, input StripeSettingsInput) (*StoreDTO, error)
	ConfirmStripeOwnership(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
}

type service struct {
	repo   storeRepository
	cipher encrypter
}

func NewService(repo storeRepository, cipher encrypter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("credential cipher required")
	}
	return &service{repo: repo, cipher: cipher}, nil
}

func (s *service) Get(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) ConfigureStripe(ctx context.Context, storeID uuid.UUID, input StripeSettingsInput) (*StoreDTO, error) {
	apiKey := strings.TrimSpace(input.APIKey)
	if apiKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe api key is required")
	}
	if _, err := s.load(ctx, storeID); err != nil {
		return nil, err
	}

	encKey, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt stripe api key")
	}
	var encSecret *string
	if secret := strings.TrimSpace(input.WebhookSecret); secret != "" {
		enc, err := s.cipher.Encrypt(secret)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt stripe webhook secret")
		}
		encSecret = &enc
	}

	if err := s.repo.UpdateStripeSettings(ctx, storeID, encKey, encSecret); err != nil {
		return nil, db.MapError(err, "store")
	}
	return s.Get(ctx, storeID)
}

func (s *service) ConfirmStripeOwnership(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !hasValue(store.StripeAPIKey) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe is not configured for this store")
	}
	if err := s.repo.SetStripeOwnershipConfirmed(ctx, storeID, true); err != nil {
		return nil, db.MapError(err, "store")
	}
	store.StripeOwnershipConfirmed = true
	return FromModel(store), nil
}

func (s *service) load(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return nil, db.MapError(err, "store")
	}
	return store, nil
}
