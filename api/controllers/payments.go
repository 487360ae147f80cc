package controllers

import (
	"net/http"

	"github.com/boutique2v/commerce-backend/api/responses"
	"github.com/boutique2v/commerce-backend/api/validators"
	paymentsvc "github.com/boutique2v/commerce-backend/internal/payments"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// PaymentIntentCreate quotes the basket and opens a Stripe payment intent
// for the quoted amount.
func PaymentIntentCreate(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload intentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateIntent(r.Context(), userID, paymentsvc.IntentInput{
			Items:          toItemInputs(payload.Items),
			ShippingMethod: payload.ShippingMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type intentRequest struct {
	Items          []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingMethod string             `json:"shipping_method" validate:"required"`
}
