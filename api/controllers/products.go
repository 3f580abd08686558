package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/jobs"
	"github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// JobEnqueuer publishes background jobs. It is nil when Redis is not configured.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload any) error
}

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		var input products.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), storeID, params)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), storeID, id)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), storeID, id); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

type catalogImportRequest struct {
	CSV string `json:"csv" validate:"required"`
}

// ProductImport queues a CSV catalog import for the worker. The header is
// checked up front so obviously broken files are rejected synchronously.
func ProductImport(queue JobEnqueuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		if queue == nil {
			responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "background jobs are not configured"))
			return
		}
		var body catalogImportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		rows, err := jobs.ParseCatalogCSV(strings.NewReader(body.CSV))
		if err != nil {
			responses.WriteError(r, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
			return
		}

		payload := jobs.CatalogImport{StoreID: storeID, CSV: body.CSV}
		if err := queue.Enqueue(r.Context(), jobs.TypeCatalogImport, payload); err != nil {
			responses.WriteError(r, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue catalog import"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{
			"queued": true,
			"rows":   len(rows),
		})
	}
}
