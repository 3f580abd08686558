package webhooks

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/stripepay"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const maxWebhookBody = 65536

type StripeWebhookService interface {
	HandleWebhook(ctx context.Context, storeID uuid.UUID, payload []byte, signature string) (*stripepay.WebhookResult, error)
}

// StripeWebhook receives payment intent events for one tenant. The route is
// public; authenticity comes from the tenant's signing secret.
func StripeWebhook(svc StripeWebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(r, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		sigHeader := strings.TrimSpace(r.Header.Get(pkgstripe.SignatureHeader))
		if sigHeader == "" {
			responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreID(ctx, storeID.String())
		}

		result, err := svc.HandleWebhook(ctx, storeID, payload, sigHeader)
		if err != nil {
			responses.WriteError(r.WithContext(ctx), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
