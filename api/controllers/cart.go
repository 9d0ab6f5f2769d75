package controllers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkfood/ordering-backend/api/middleware"
	"github.com/arkfood/ordering-backend/api/responses"
	"github.com/arkfood/ordering-backend/api/validators"
	cartsvc "github.com/arkfood/ordering-backend/internal/cart"
	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/internal/hours"
	"github.com/arkfood/ordering-backend/pkg/config"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"github.com/arkfood/ordering-backend/pkg/logger"
)

const maxImportBody = 1 << 20

type addItemRequest struct {
	DishID   string `json:"dishId" validate:"required"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity" validate:"omitempty,gt=0"`
	OpenCart bool   `json:"openCart,omitempty"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type clearCartRequest struct {
	Confirm bool `json:"confirm"`
}

type checkoutContact struct {
	Restaurant string   `json:"restaurant"`
	Phones     []string `json:"phones"`
	OpenTime   string   `json:"open_time"`
	CloseTime  string   `json:"close_time"`
}

type checkoutResponse struct {
	Snapshot cartsvc.Snapshot `json:"snapshot"`
	Contact  checkoutContact  `json:"contact"`
}

func sessionStore(r *http.Request, manager *cartsvc.Manager) (*cartsvc.Store, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart session missing")
	}
	return manager.Store(r.Context(), sessionID)
}

// CartFetch returns the current snapshot, adopting recent external writes.
func CartFetch(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Resync(r.Context())
		responses.WriteSuccess(w, store.Snapshot(r.Context()))
	}
}

// CartAddItem puts a dish into the cart and returns the fresh snapshot.
func CartAddItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		snap, err := store.AddItem(r.Context(), payload.DishID, payload.Size, payload.Quantity, payload.OpenCart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snap)
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := store.UpdateQuantity(r.Context(), chi.URLParam(r, "lineId"), *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartRemoveItem deletes a whole line.
func CartRemoveItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := store.RemoveItem(r.Context(), chi.URLParam(r, "lineId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartClear empties the cart. The client expresses consent in the body;
// without it the clear is declined.
func CartClear(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clearCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !payload.Confirm {
			responses.WriteError(r.Context(), logg, w, cartsvc.ErrClearDeclined)
			return
		}

		snap, err := store.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartRecommendations suggests dishes complementing what is in the cart.
func CartRecommendations(manager *cartsvc.Manager, svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap := store.Snapshot(r.Context())
		inCart := make([]catalog.DishDTO, 0, len(snap.Items))
		for _, item := range snap.Items {
			dish, err := svc.Dish(r.Context(), item.DishID)
			if err != nil {
				continue
			}
			inCart = append(inCart, dish)
		}

		dishes, err := svc.Recommendations(r.Context(), inCart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dishes)
	}
}

// CartExport streams the cart as a downloadable JSON document.
func CartExport(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := store.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="cart-export.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

// CartImport replaces the cart with a previously exported payload.
func CartImport(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading import payload"))
			return
		}

		snap, err := store.Import(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartCheckout gates the order and hands back the restaurant contact the
// storefront shows in its checkout dialog.
func CartCheckout(manager *cartsvc.Manager, cfg *config.Config, schedule hours.Schedule, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := store.Checkout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		open, closing := schedule.Window()
		responses.WriteSuccess(w, checkoutResponse{
			Snapshot: snap,
			Contact: checkoutContact{
				Restaurant: cfg.Business.Name,
				Phones:     []string{cfg.Business.Phone, cfg.Business.Phone2},
				OpenTime:   open,
				CloseTime:  closing,
			},
		})
	}
}
