package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		var input orders.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
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
		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), storeID, filters, params)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseOrderFilters(r *http.Request) (orders.ListFilters, error) {
	var filters orders.ListFilters
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("paymentStatus")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentStatus filter")
		}
		filters.PaymentStatus = &status
	}
	customerID, err := validators.ParseOptionalUUIDQuery(r, "customerId")
	if err != nil {
		return filters, err
	}
	filters.CustomerID = customerID
	return filters, nil
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
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
		order, err := svc.Get(r.Context(), storeID, id)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
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
		var input orders.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		order, err := svc.Update(r.Context(), storeID, id, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderCancel accepts an optional reason; an empty body is allowed.
func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
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
		var input orders.CancelInput
		if err := validators.DecodeOptionalJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		order, err := svc.Cancel(r.Context(), storeID, id, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "payment")
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
		list, err := svc.ListByOrder(r.Context(), storeID, id)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OrderShipments(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "shipping")
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
		list, err := svc.ListByOrder(r.Context(), storeID, id)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
