package carts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartshare/cartshare-backend/api/responses"
	"github.com/cartshare/cartshare-backend/api/validators"
	cartsvc "github.com/cartshare/cartshare-backend/internal/carts"
	checkoutsvc "github.com/cartshare/cartshare-backend/internal/checkout"
	"github.com/cartshare/cartshare-backend/pkg/logger"
)

// InitiateCheckout validates the cart and acquires the checkout lock. A
// blocked validation comes back as 400 with the structured issue list.
func InitiateCheckout(coordinator *checkoutsvc.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		validation, err := coordinator.Initiate(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !validation.Valid {
			responses.WriteSuccessStatus(w, http.StatusBadRequest, validation)
			return
		}
		responses.WriteSuccess(w, validation)
	}
}

// CancelCheckout releases the checkout lock. Owner only, idempotent.
func CancelCheckout(coordinator *checkoutsvc.Coordinator, svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.RequireQueryString(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := coordinator.Cancel(r.Context(), chi.URLParam(r, "cartID"), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}
