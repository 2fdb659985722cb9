package handler

import (
	"context"
	"menuengine/internal/model"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// ProviderMenuStore persists partner-synced menus
type ProviderMenuStore interface {
	Upsert(ctx context.Context, menu *model.ProviderMenu) error
	Delete(ctx context.Context, placeID string) error
}

// ResolutionLister reads the resolution log
type ResolutionLister interface {
	ListByPlace(ctx context.Context, placeID string, limit int64) ([]*model.ResolutionLog, error)
}

// PlaceDataHandler handles partner menu ingestion and resolution history
type PlaceDataHandler struct {
	menus       ProviderMenuStore
	resolutions ResolutionLister
}

// NewPlaceDataHandler creates a new place data handler
func NewPlaceDataHandler(menus ProviderMenuStore, resolutions ResolutionLister) *PlaceDataHandler {
	return &PlaceDataHandler{menus: menus, resolutions: resolutions}
}

// PutProviderMenu handles PUT /v1/places/{placeId}/provider-menu
func (h *PlaceDataHandler) PutProviderMenu(w http.ResponseWriter, r *http.Request) {
	placeID := strings.TrimSpace(mux.Vars(r)["placeId"])

	var menu model.ProviderMenu
	if err := decodeBody(r, &menu); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	menu.PlaceID = placeID

	doc := &model.MenuDocument{Categories: menu.Categories}
	if placeID == "" || !doc.Valid() {
		writeError(w, http.StatusBadRequest, "menu needs at least one category and no empty categories")
		return
	}

	if err := h.menus.Upsert(r.Context(), &menu); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// DeleteProviderMenu handles DELETE /v1/places/{placeId}/provider-menu
func (h *PlaceDataHandler) DeleteProviderMenu(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)["placeId"]
	if err := h.menus.Delete(r.Context(), placeID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resolutions handles GET /v1/places/{placeId}/resolutions
func (h *PlaceDataHandler) Resolutions(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)["placeId"]

	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	entries, err := h.resolutions.ListByPlace(r.Context(), placeID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*model.ResolutionLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}
