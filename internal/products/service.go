package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Product, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

// Service is the minimal catalog needed to place orders against.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ProductDTO, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (types.Page[ProductDTO], error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type service struct {
	repo productRepository
}

func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ProductDTO, error) {
	product, err := buildProduct(storeID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, db.MapError(err, "product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (types.Page[ProductDTO], error) {
	rows, err := s.repo.List(ctx, storeID, params)
	if err != nil {
		return types.Page[ProductDTO]{}, db.MapError(err, "product")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Build(dtos, params, func(p ProductDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return db.MapError(s.repo.Delete(ctx, storeID, id), "product")
}

func buildProduct(storeID uuid.UUID, input CreateInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" || sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and sku are required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	status := enums.ProductStatusActive
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := enums.ParseProductStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product status")
		}
		status = parsed
	}

	product := &models.Product{
		StoreID: storeID,
		Name:    name,
		SKU:     sku,
		Price:   input.Price,
		Stock:   input.Stock,
		Status:  status,
	}
	for _, v := range input.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			StoreID: storeID,
			Name:    strings.TrimSpace(v.Name),
			SKU:     strings.TrimSpace(v.SKU),
			Price:   v.Price,
			Stock:   v.Stock,
		})
	}
	return product, nil
}
