package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type orderStore interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Order, error)
	UpdateFields(ctx context.Context, storeID, id uuid.UUID, updates map[string]any) error
}

type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ShipmentDTO, error)
	UpdateStatus(ctx context.Context, storeID, id uuid.UUID, input UpdateStatusInput) (*ShipmentDTO, error)
	UpdateTracking(ctx context.Context, storeID uuid.UUID, input TrackingUpdateInput) (*ShipmentDTO, error)
	Track(ctx context.Context, storeID uuid.UUID, trackingNumber string) (*TrackingDTO, error)
	Cancel(ctx context.Context, storeID, id uuid.UUID) (*ShipmentDTO, error)
	CancelOrderShipments(ctx context.Context, storeID, orderID uuid.UUID) error
	ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]ShipmentDTO, error)
}

type ServiceParams struct {
	Repo     Repository
	Orders   orderStore
	Carriers *CarrierRegistry
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     Repository
	orders   orderStore
	carriers *CarrierRegistry
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("shipment repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Carriers == nil {
		return nil, fmt.Errorf("carrier registry required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		orders:   params.Orders,
		carriers: params.Carriers,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Create records a PENDING shipment and moves the order to PROCESSING
// whatever its current status.
func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ShipmentDTO, error) {
	order, err := s.orders.FindByID(ctx, storeID, input.OrderID)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	carrier, err := s.carriers.Lookup(input.Carrier)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_id": storeID.String(),
		"order_id": order.ID.String(),
		"carrier":  carrier.Name().String(),
	})

	shipment := &models.Shipment{
		OrderID: order.ID,
		StoreID: storeID,
		Carrier: carrier.Name(),
		Status:  enums.ShipmentStatusPending,
	}
	if input.TrackingNumber != nil && strings.TrimSpace(*input.TrackingNumber) != "" {
		shipment.TrackingNumber = strings.TrimSpace(*input.TrackingNumber)
		shipment.Metadata = &types.ShipmentMetadata{Kind: types.ShipmentMetadataManual}
	} else {
		label, err := carrier.CreateShipment(ctx, LabelRequest{
			OrderNumber: order.OrderNumber,
			Destination: order.ShippingAddress,
		})
		if err != nil {
			s.logg.Warn(ctx, "shipment.label_failed")
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		shipment.TrackingNumber = label.TrackingNumber
		shipment.Metadata = &types.ShipmentMetadata{
			Kind:     types.ShipmentMetadataLabel,
			LabelID:  label.LabelID,
			LabelURL: label.LabelURL,
		}
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, db.MapError(err, "shipment")
	}
	if err := s.orders.UpdateFields(ctx, storeID, order.ID, map[string]any{
		"status": enums.OrderStatusProcessing,
	}); err != nil {
		return nil, db.MapError(err, "order")
	}
	s.logg.Info(s.logg.WithField(ctx, "tracking_number", shipment.TrackingNumber), "shipment.created")
	dto := FromModel(*shipment)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, storeID, id uuid.UUID, input UpdateStatusInput) (*ShipmentDTO, error) {
	shipment, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "shipment")
	}
	return s.transition(ctx, storeID, shipment, input.Status)
}

func (s *service) UpdateTracking(ctx context.Context, storeID uuid.UUID, input TrackingUpdateInput) (*ShipmentDTO, error) {
	tracking := strings.TrimSpace(input.TrackingNumber)
	if tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}
	shipment, err := s.repo.FindByTrackingNumber(ctx, storeID, tracking)
	if err != nil {
		return nil, db.MapError(err, "shipment")
	}
	return s.transition(ctx, storeID, shipment, input.Status)
}

// transition persists the shipment status and propagates it to the order.
func (s *service) transition(ctx context.Context, storeID uuid.UUID, shipment *models.Shipment, rawStatus string) (*ShipmentDTO, error) {
	status, err := enums.ParseShipmentStatus(rawStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	now := s.now().UTC()
	updates := map[string]any{"status": status}
	switch status {
	case enums.ShipmentStatusInTransit:
		if shipment.ShippedAt == nil {
			updates["shipped_at"] = now
			shipment.ShippedAt = &now
		}
	case enums.ShipmentStatusDelivered:
		updates["delivered_at"] = now
		shipment.DeliveredAt = &now
	}
	if err := s.repo.UpdateFields(ctx, storeID, shipment.ID, updates); err != nil {
		return nil, db.MapError(err, "shipment")
	}
	shipment.Status = status

	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_id":    storeID.String(),
		"order_id":    shipment.OrderID.String(),
		"shipment_id": shipment.ID.String(),
		"status":      status.String(),
	})
	if orderStatus, ok := status.OrderStatus(); ok {
		if err := s.orders.UpdateFields(ctx, storeID, shipment.OrderID, map[string]any{
			"status": orderStatus,
		}); err != nil {
			return nil, db.MapError(err, "order")
		}
	}
	s.logg.Info(ctx, "shipment.status_updated")
	dto := FromModel(*shipment)
	return &dto, nil
}

func (s *service) Track(ctx context.Context, storeID uuid.UUID, trackingNumber string) (*TrackingDTO, error) {
	shipment, err := s.repo.FindByTrackingNumber(ctx, storeID, strings.TrimSpace(trackingNumber))
	if err != nil {
		return nil, db.MapError(err, "shipment")
	}
	carrier, err := s.carriers.Lookup(shipment.Carrier.String())
	if err != nil {
		return nil, err
	}
	info, err := carrier.Track(ctx, shipment.TrackingNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier tracking unavailable")
	}
	return &TrackingDTO{Shipment: FromModel(*shipment), Tracking: info}, nil
}

// Cancel voids the carrier shipment and resets it to PENDING, the model
// having no cancelled status.
func (s *service) Cancel(ctx context.Context, storeID, id uuid.UUID) (*ShipmentDTO, error) {
	shipment, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, db.MapError(err, "shipment")
	}
	if err := s.cancel(ctx, storeID, shipment); err != nil {
		return nil, err
	}
	dto := FromModel(*shipment)
	return &dto, nil
}

func (s *service) cancel(ctx context.Context, storeID uuid.UUID, shipment *models.Shipment) error {
	if shipment.Status == enums.ShipmentStatusDelivered {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivered shipments cannot be cancelled")
	}
	carrier, err := s.carriers.Lookup(shipment.Carrier.String())
	if err != nil {
		return err
	}
	if err := carrier.Cancel(ctx, shipment.TrackingNumber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	if err := s.repo.UpdateFields(ctx, storeID, shipment.ID, map[string]any{
		"status": enums.ShipmentStatusPending,
	}); err != nil {
		return db.MapError(err, "shipment")
	}
	shipment.Status = enums.ShipmentStatusPending
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"store_id":    storeID.String(),
		"shipment_id": shipment.ID.String(),
	}), "shipment.cancelled")
	return nil
}

// CancelOrderShipments cancels every undelivered shipment of an order and
// reports all failures together.
func (s *service) CancelOrderShipments(ctx context.Context, storeID, orderID uuid.UUID) error {
	rows, err := s.repo.ListByOrder(ctx, storeID, orderID)
	if err != nil {
		return db.MapError(err, "shipment")
	}
	var errs error
	for i := range rows {
		if rows[i].Status == enums.ShipmentStatusDelivered {
			continue
		}
		errs = multierr.Append(errs, s.cancel(ctx, storeID, &rows[i]))
	}
	return errs
}

func (s *service) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]ShipmentDTO, error) {
	if _, err := s.orders.FindByID(ctx, storeID, orderID); err != nil {
		return nil, db.MapError(err, "order")
	}
	rows, err := s.repo.ListByOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, db.MapError(err, "shipment")
	}
	out := make([]ShipmentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}
