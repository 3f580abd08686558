package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Service manages coupons and the storefront-facing code validation.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*CouponDTO, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*CouponDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (types.Page[CouponDTO], error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateInput) (*CouponDTO, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*CouponDTO, error)
	IncrementUsage(ctx context.Context, storeID, id uuid.UUID) error
	ActiveByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*service)

// WithClock overrides the time source used for validity windows.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	svc := &service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// NormalizeCode is the canonical stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount returns the amount a coupon takes off subtotal. It is not capped.
func Discount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	switch coupon.Type {
	case enums.CouponTypePercentage:
		return subtotal.Mul(coupon.Value).Div(hundred).Round(2)
	case enums.CouponTypeFixed:
		return coupon.Value
	default:
		return decimal.Zero
	}
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*CouponDTO, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	couponType, err := enums.ParseCouponType(input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type")
	}
	status := enums.CouponStatusActive
	if strings.TrimSpace(input.Status) != "" {
		if status, err = enums.ParseCouponStatus(input.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon status")
		}
	}
	if err := validateValue(couponType, input.Value); err != nil {
		return nil, err
	}
	if err := validateWindow(input.ValidFrom, input.ValidUntil); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		StoreID:    storeID,
		Code:       code,
		Type:       couponType,
		Value:      input.Value,
		UsageLimit: input.UsageLimit,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		Status:     status,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, db.MapError(err, "coupon")
	}
	dto := FromModel(*coupon)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*CouponDTO, error) {
	coupon, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "coupon")
	}
	dto := FromModel(*coupon)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (types.Page[CouponDTO], error) {
	rows, err := s.repo.List(ctx, storeID, params)
	if err != nil {
		return types.Page[CouponDTO]{}, db.MapError(err, "coupon")
	}
	dtos := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Build(dtos, params, func(c CouponDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}), nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateInput) (*CouponDTO, error) {
	current, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "coupon")
	}

	updates := map[string]any{}
	couponType := current.Type
	if input.Code != nil {
		code := NormalizeCode(*input.Code)
		if code == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
		}
		updates["code"] = code
	}
	if input.Type != nil {
		if couponType, err = enums.ParseCouponType(*input.Type); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type")
		}
		updates["type"] = couponType
	}
	value := current.Value
	if input.Value != nil {
		value = *input.Value
		updates["value"] = value
	}
	if input.Type != nil || input.Value != nil {
		if err := validateValue(couponType, value); err != nil {
			return nil, err
		}
	}
	if input.UsageLimit != nil {
		updates["usage_limit"] = *input.UsageLimit
	}
	from, until := current.ValidFrom, current.ValidUntil
	if input.ValidFrom != nil {
		from = input.ValidFrom
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		until = input.ValidUntil
		updates["valid_until"] = *input.ValidUntil
	}
	if err := validateWindow(from, until); err != nil {
		return nil, err
	}
	if input.Status != nil {
		status, err := enums.ParseCouponStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon status")
		}
		updates["status"] = status
	}

	if err := s.repo.Update(ctx, storeID, id, updates); err != nil {
		return nil, db.MapError(err, "coupon")
	}
	return s.Get(ctx, storeID, id)
}

func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return db.MapError(s.repo.Delete(ctx, storeID, id), "coupon")
}

// FindByCode enforces status, validity window and usage cap. Order creation
// does not go through here; see ActiveByID.
func (s *service) FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*CouponDTO, error) {
	coupon, err := s.repo.FindByCode(ctx, storeID, NormalizeCode(code))
	if err != nil {
		return nil, db.MapError(err, "coupon")
	}

	now := s.now()
	switch {
	case coupon.Status != enums.CouponStatusActive:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	case coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not yet valid")
	case coupon.ValidUntil != nil && now.After(*coupon.ValidUntil):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	case coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon usage limit reached")
	}

	dto := FromModel(*coupon)
	return &dto, nil
}

func (s *service) IncrementUsage(ctx context.Context, storeID, id uuid.UUID) error {
	return db.MapError(s.repo.IncrementUsage(ctx, storeID, id), "coupon")
}

// ActiveByID only checks tenant and status. A missing or inactive coupon
// yields (nil, nil).
func (s *service) ActiveByID(ctx context.Context, storeID, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindActiveByID(ctx, storeID, id)
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, db.MapError(err, "coupon")
	}
	return coupon, nil
}

func validateValue(couponType enums.CouponType, value decimal.Decimal) error {
	if !value.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if couponType == enums.CouponTypePercentage && value.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage coupons cannot exceed 100")
	}
	return nil
}

func validateWindow(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return pkgerrors.New(pkgerrors.CodeValidation, "validUntil must be after validFrom")
	}
	return nil
}
