package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/stripepay"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func PaymentProcess(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "payment")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		var input payments.ProcessInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		payment, err := svc.ProcessPayment(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// PaymentRefund refunds a settled payment. Without an amount the full
// payment amount is refunded.
func PaymentRefund(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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
		var input payments.RefundInput
		if err := validators.DecodeOptionalJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		payment, err := svc.Refund(r.Context(), storeID, id, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

func PaymentCreateIntent(svc stripepay.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "stripe")
			return
		}
		storeID, ok := tenantID(w, r, logg)
		if !ok {
			return
		}
		var input stripepay.IntentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		intent, err := svc.CreatePaymentIntent(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}
