package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type storeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// StoreContext requires an authenticated tenant and rejects requests for
// stores that are missing or suspended.
func StoreContext(stores storeFinder, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID, ok := StoreIDFromContext(r.Context())
			if !ok {
				responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
				return
			}
			if stores == nil {
				next.ServeHTTP(w, r)
				return
			}

			store, err := stores.FindByID(r.Context(), storeID)
			if err != nil {
				if db.IsNotFound(err) {
					responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store not found"))
					return
				}
				responses.WriteError(r, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store"))
				return
			}
			if !store.IsActive() {
				responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store is suspended"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
