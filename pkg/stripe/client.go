package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// IntentParams describes a payment intent in the smallest currency unit.
type IntentParams struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// Intent is the subset of a Stripe PaymentIntent the storefront needs.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// IntentClient creates payment intents against one Stripe account.
type IntentClient interface {
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
}

// ClientFactory builds an IntentClient from a tenant's decrypted secret key.
type ClientFactory interface {
	ForKey(ctx context.Context, apiKey string) (IntentClient, error)
}

// Factory builds per-tenant Stripe clients. Keys are never written to the
// package-level stripe.Key so tenants cannot leak into each other.
type Factory struct {
	environment string
	logg        *logger.Logger
}

func NewFactory(cfg config.StripeConfig, logg *logger.Logger) (*Factory, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}
	return &Factory{environment: env, logg: logg}, nil
}

// Environment reports the normalized Stripe environment in use.
func (f *Factory) Environment() string {
	if f == nil {
		return ""
	}
	return f.environment
}

func (f *Factory) ForKey(ctx context.Context, apiKey string) (IntentClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(f.environment, apiKey); err != nil {
		return nil, err
	}
	if f.logg != nil {
		f.logg.Debug(ctx, fmt.Sprintf("stripe tenant client initialized (%s)", f.environment))
	}
	return &intentClient{api: stripe.NewClient(apiKey)}, nil
}

type intentClient struct {
	api *stripe.Client
}

func (c *intentClient) CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	p := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(strings.ToLower(params.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	if params.IdempotencyKey != "" {
		p.SetIdempotencyKey(params.IdempotencyKey)
	}

	pi, err := c.api.V1PaymentIntents.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
