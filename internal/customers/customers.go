package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type CreateInput struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"firstName" validate:"max=100"`
	LastName  string  `json:"lastName" validate:"max=100"`
	Phone     *string `json:"phone,omitempty"`
}

type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModel(m models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
	}
}

// Repository keeps customers inside their store.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.DB(ctx).Create(customer).Error
}

func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.Live(ctx, storeID).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *Repository) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Customer, error) {
	query, err := pagination.Apply(r.Live(ctx, storeID), params)
	if err != nil {
		return nil, err
	}
	var rows []models.Customer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return r.SoftDelete(ctx, &models.Customer{}, storeID, id)
}

type customerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Customer, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*CustomerDTO, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (types.Page[CustomerDTO], error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type service struct {
	repo customerRepository
}

func NewService(repo customerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*CustomerDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	customer := &models.Customer{
		StoreID:   storeID,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     input.Phone,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, db.MapError(err, "customer")
	}
	dto := FromModel(*customer)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "customer")
	}
	dto := FromModel(*customer)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (types.Page[CustomerDTO], error) {
	rows, err := s.repo.List(ctx, storeID, params)
	if err != nil {
		return types.Page[CustomerDTO]{}, db.MapError(err, "customer")
	}
	dtos := make([]CustomerDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Build(dtos, params, func(c CustomerDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}), nil
}

func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return db.MapError(s.repo.Delete(ctx, storeID, id), "customer")
}
