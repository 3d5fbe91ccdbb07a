package carts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartshare/cartshare-backend/api/responses"
	"github.com/cartshare/cartshare-backend/api/validators"
	cartsvc "github.com/cartshare/cartshare-backend/internal/carts"
	"github.com/cartshare/cartshare-backend/pkg/logger"
)

// Create opens a new cart for the posting user.
func Create(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CreateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Create(r.Context(), payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cart, svc.Now(), nil))
	}
}

// Fetch reads a cart, optionally converting display amounts via ?currency=.
func Fetch(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.RequireQueryString(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		currency := validators.OptionalQueryString(r, "currency")

		cart, view, err := svc.Get(r.Context(), chi.URLParam(r, "cartID"), userID, currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), view))
	}
}

// Delete removes a cart. Owner only.
func Delete(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.RequireQueryString(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "cartID"), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

// AddItem adds quantity of a product to the cart.
func AddItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// SetQuantity sets a line to an absolute quantity; zero removes it.
func SetQuantity(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetItemQuantity(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, chi.URLParam(r, "productID"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// RemoveItem drops a line from the cart.
func RemoveItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.RequireQueryString(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), userID, chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// Validate re-checks every line against current stock.
func Validate(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ValidateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		validation, err := svc.Validate(r.Context(), chi.URLParam(r, "cartID"), payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, validation)
	}
}

// ApplyDiscount applies a discount code to the cart.
func ApplyDiscount(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload DiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.ApplyDiscount(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// RemoveDiscount clears the applied discount.
func RemoveDiscount(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.RequireQueryString(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveDiscount(r.Context(), chi.URLParam(r, "cartID"), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// Refresh extends the cart's expiry window, reviving an expired cart.
func Refresh(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload RefreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Refresh(r.Context(), chi.URLParam(r, "cartID"), payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// AddCollaborator grants a user mutation access. Owner only.
func AddCollaborator(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CollaboratorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddCollaborator(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, payload.CollaboratorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}

// RemoveCollaborator revokes a user's access. Owner only.
func RemoveCollaborator(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.RequireQueryString(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		collaboratorID, err := validators.RequireQueryString(r, "collaboratorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveCollaborator(r.Context(), chi.URLParam(r, "cartID"), userID, collaboratorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart, svc.Now(), nil))
	}
}
