package shipping

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type LabelRequest struct {
	OrderNumber string
	Destination types.Address
}

type Label struct {
	TrackingNumber string
	LabelID        string
	LabelURL       string
}

type TrackingInfo struct {
	Carrier           enums.Carrier `json:"carrier"`
	TrackingNumber    string        `json:"trackingNumber"`
	Status            string        `json:"status"`
	Location          string        `json:"location,omitempty"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery,omitempty"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// CarrierClient is one shipping provider.
type CarrierClient interface {
	Name() enums.Carrier
	CreateShipment(ctx context.Context, req LabelRequest) (Label, error)
	Track(ctx context.Context, trackingNumber string) (TrackingInfo, error)
	Cancel(ctx context.Context, trackingNumber string) error
}

type CarrierRegistry struct {
	carriers map[enums.Carrier]CarrierClient
	metrics  *metrics.GatewayMetrics
}

func NewCarrierRegistry(m *metrics.GatewayMetrics, carriers ...CarrierClient) *CarrierRegistry {
	r := &CarrierRegistry{carriers: make(map[enums.Carrier]CarrierClient, len(carriers)), metrics: m}
	for _, c := range carriers {
		if c != nil {
			r.carriers[c.Name()] = c
		}
	}
	return r
}

// DefaultCarriers wires the stub client of every supported carrier.
func DefaultCarriers(m *metrics.GatewayMetrics) *CarrierRegistry {
	return NewCarrierRegistry(m,
		NewStubCarrier(enums.CarrierFedEx),
		NewStubCarrier(enums.CarrierUPS),
		NewStubCarrier(enums.CarrierDHL),
		NewStubCarrier(enums.CarrierUSPS),
	)
}

func (r *CarrierRegistry) Lookup(name string) (CarrierClient, error) {
	carrier, err := enums.ParseCarrier(name)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported carrier %q", strings.TrimSpace(name))
	}
	c, ok := r.carriers[carrier]
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported carrier %q", carrier)
	}
	return &observedCarrier{CarrierClient: c, metrics: r.metrics}, nil
}

type observedCarrier struct {
	CarrierClient
	metrics *metrics.GatewayMetrics
}

func (o *observedCarrier) CreateShipment(ctx context.Context, req LabelRequest) (Label, error) {
	started := time.Now()
	label, err := o.CarrierClient.CreateShipment(ctx, req)
	o.metrics.Observe(metrics.GatewayKindCarrier, o.Name().String(), "create_shipment", started, err)
	return label, err
}

func (o *observedCarrier) Track(ctx context.Context, trackingNumber string) (TrackingInfo, error) {
	started := time.Now()
	info, err := o.CarrierClient.Track(ctx, trackingNumber)
	o.metrics.Observe(metrics.GatewayKindCarrier, o.Name().String(), "track", started, err)
	return info, err
}

func (o *observedCarrier) Cancel(ctx context.Context, trackingNumber string) error {
	started := time.Now()
	err := o.CarrierClient.Cancel(ctx, trackingNumber)
	o.metrics.Observe(metrics.GatewayKindCarrier, o.Name().String(), "cancel", started, err)
	return err
}

// StubCarrier issues tracking numbers of the form <CARRIER><unixmillis><random>.
type StubCarrier struct {
	name enums.Carrier
	now  func() time.Time
}

func NewStubCarrier(name enums.Carrier) *StubCarrier {
	return &StubCarrier{name: name, now: time.Now}
}

func (c *StubCarrier) Name() enums.Carrier {
	return c.name
}

func (c *StubCarrier) CreateShipment(ctx context.Context, req LabelRequest) (Label, error) {
	if err := ctx.Err(); err != nil {
		return Label{}, err
	}
	if strings.TrimSpace(req.Destination.Line1) == "" {
		return Label{}, fmt.Errorf("%s: destination address required", strings.ToLower(c.name.String()))
	}
	tracking := fmt.Sprintf("%s%d%s", c.name, c.now().UnixMilli(), randomSuffix(6))
	return Label{
		TrackingNumber: tracking,
		LabelID:        "lbl_" + strings.ToLower(tracking),
		LabelURL:       fmt.Sprintf("https://labels.example.com/%s/%s.pdf", strings.ToLower(c.name.String()), tracking),
	}, nil
}

func (c *StubCarrier) Track(ctx context.Context, trackingNumber string) (TrackingInfo, error) {
	if err := ctx.Err(); err != nil {
		return TrackingInfo{}, err
	}
	now := c.now().UTC()
	eta := now.Add(72 * time.Hour)
	return TrackingInfo{
		Carrier:           c.name,
		TrackingNumber:    trackingNumber,
		Status:            enums.ShipmentStatusInTransit.String(),
		Location:          "Sorting facility",
		EstimatedDelivery: &eta,
		UpdatedAt:         now,
	}, nil
}

func (c *StubCarrier) Cancel(ctx context.Context, trackingNumber string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(trackingNumber) == "" {
		return fmt.Errorf("%s: tracking number required", strings.ToLower(c.name.String()))
	}
	return nil
}

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomSuffix(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = suffixAlphabet[0]
			continue
		}
		out[i] = suffixAlphabet[idx.Int64()]
	}
	return string(out)
}
