package handler

import (
	"context"
	"errors"
	"log"
	"menuengine/internal/model"
	"menuengine/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// MenuResolver is the engine surface the menu endpoints need
type MenuResolver interface {
	ResolveMenu(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error)
	ResolveMenuWithExplicitAI(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error)
}

// MenuHandler handles menu resolution endpoints
type MenuHandler struct {
	menuSvc MenuResolver
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuSvc MenuResolver) *MenuHandler {
	return &MenuHandler{menuSvc: menuSvc}
}

// Resolve handles POST /v1/places/{placeId}/menu
func (h *MenuHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.menuSvc.ResolveMenu)
}

// ResolveAI handles POST /v1/places/{placeId}/menu/ai
func (h *MenuHandler) ResolveAI(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.menuSvc.ResolveMenuWithExplicitAI)
}

type resolveFunc func(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error)

// handle answers 200 with either the menu or the no-menu payload; a missing
// menu is a normal outcome, not an HTTP error
func (h *MenuHandler) handle(w http.ResponseWriter, r *http.Request, resolve resolveFunc) {
	placeID := mux.Vars(r)["placeId"]

	var bundle model.RestaurantSignalBundle
	if err := decodeBody(r, &bundle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := resolve(r.Context(), placeID, &bundle)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidPlaceID), errors.Is(err, model.ErrInvalidBundle):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "resolution cancelled")
		default:
			log.Printf("[Menu] request %s: resolve %s: %v", middleware.GetRequestID(r.Context()), placeID, err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, result.Payload())
}
