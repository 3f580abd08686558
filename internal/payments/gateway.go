package payments

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type ChargeRequest struct {
	OrderID  uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Token    string
}

type ChargeResult struct {
	TransactionID string
	Message       string
}

type RefundRequest struct {
	TransactionID string
	Amount        decimal.Decimal
}

type RefundResult struct {
	RefundID string
}

// Gateway is one payment provider.
type Gateway interface {
	Name() enums.PaymentGateway
	Process(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (RefundResult, error)
}

// Registry resolves gateways by name and records a metric for every call.
type Registry struct {
	gateways map[enums.PaymentGateway]Gateway
	metrics  *metrics.GatewayMetrics
}

func NewRegistry(m *metrics.GatewayMetrics, gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[enums.PaymentGateway]Gateway, len(gateways)), metrics: m}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.Name()] = g
		}
	}
	return r
}

// DefaultRegistry wires the built-in stub gateways.
func DefaultRegistry(m *metrics.GatewayMetrics) *Registry {
	return NewRegistry(m,
		NewStubGateway(enums.PaymentGatewayStripe),
		NewStubGateway(enums.PaymentGatewayPaypal),
		NewStubGateway(enums.PaymentGatewayCash),
	)
}

// Lookup matches name case-insensitively. Unknown names are a validation error.
func (r *Registry) Lookup(name string) (Gateway, error) {
	gateway, err := enums.ParsePaymentGateway(name)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported payment gateway %q", strings.TrimSpace(name))
	}
	g, ok := r.gateways[gateway]
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported payment gateway %q", gateway)
	}
	return &observedGateway{Gateway: g, metrics: r.metrics}, nil
}

type observedGateway struct {
	Gateway
	metrics *metrics.GatewayMetrics
}

func (o *observedGateway) Process(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	started := time.Now()
	res, err := o.Gateway.Process(ctx, req)
	o.metrics.Observe(metrics.GatewayKindPayment, o.Name().String(), "process", started, err)
	return res, err
}

func (o *observedGateway) Refund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	started := time.Now()
	res, err := o.Gateway.Refund(ctx, req)
	o.metrics.Observe(metrics.GatewayKindPayment, o.Name().String(), "refund", started, err)
	return res, err
}

// StubGateway approves every well-formed request with a synthetic id of the
// form <gateway>_<unixmillis>_<random>.
type StubGateway struct {
	name enums.PaymentGateway
	now  func() time.Time
}

func NewStubGateway(name enums.PaymentGateway) *StubGateway {
	return &StubGateway{name: name, now: time.Now}
}

func (g *StubGateway) Name() enums.PaymentGateway {
	return g.name
}

func (g *StubGateway) Process(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}
	return ChargeResult{
		TransactionID: g.syntheticID(),
		Message:       fmt.Sprintf("%s charge approved", strings.ToLower(g.name.String())),
	}, nil
}

func (g *StubGateway) Refund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	if err := ctx.Err(); err != nil {
		return RefundResult{}, err
	}
	if req.TransactionID == "" {
		return RefundResult{}, fmt.Errorf("%s: transaction id required for refund", strings.ToLower(g.name.String()))
	}
	return RefundResult{RefundID: g.syntheticID()}, nil
}

func (g *StubGateway) syntheticID() string {
	return fmt.Sprintf("%s_%d_%s", strings.ToLower(g.name.String()), g.now().UnixMilli(), randomSuffix(9))
}

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

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
