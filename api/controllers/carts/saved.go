package carts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartshare/cartshare-backend/api/responses"
	"github.com/cartshare/cartshare-backend/api/validators"
	cartsvc "github.com/cartshare/cartshare-backend/internal/carts"
	"github.com/cartshare/cartshare-backend/pkg/domain"
	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/logger"
)

// Save snapshots the cart under the caller's account.
func Save(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload SaveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.Save(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newSavedCartResponse(saved))
	}
}

// ListSaved returns the user's snapshots, newest first.
func ListSaved(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved, err := svc.ListSaved(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := make([]SavedCartResponse, 0, len(saved))
		for i := range saved {
			list = append(list, newSavedCartResponse(&saved[i]))
		}
		responses.WriteSuccess(w, list)
	}
}

// Restore applies a snapshot onto the cart in merge or replace mode.
func Restore(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload RestoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParseRestoreMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid restore mode"))
			return
		}
		savedID, err := uuid.Parse(chi.URLParam(r, "savedID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "saved cart not found"))
			return
		}

		cart, issues, err := svc.Restore(r.Context(), chi.URLParam(r, "cartID"), payload.UserID, savedID, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if issues == nil {
			issues = []domain.RestoreIssue{}
		}
		responses.WriteSuccess(w, RestoreResponse{
			Cart:   newCartResponse(cart, svc.Now(), nil),
			Issues: issues,
		})
	}
}
