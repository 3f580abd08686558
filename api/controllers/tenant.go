package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// tenantID resolves the store scoping the request and writes a 403 when it
// is absent.
func tenantID(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	storeID, ok := middleware.StoreIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
		return uuid.Nil, false
	}
	return storeID, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r, logg, w, pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name))
}
