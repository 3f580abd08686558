package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func CouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupon")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		var input coupons.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		coupon, err := svc.Create(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func CouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupon")
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

func CouponGet(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupon")
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
		coupon, err := svc.Get(r.Context(), storeID, id)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func CouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupon")
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
		var input coupons.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		coupon, err := svc.Update(r.Context(), storeID, id, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func CouponDelete(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupon")
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

// CouponValidate is the storefront check for a typed code. Each failed rule
// has its own 400 message.
func CouponValidate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupon")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}
		coupon, err := svc.FindByCode(r.Context(), storeID, code)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}
