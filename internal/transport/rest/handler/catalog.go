package handler

import (
	"menuengine/internal/model"
	"menuengine/internal/service"
	"net/http"

	"github.com/gorilla/mux"
)

// CatalogHandler exposes the classifier and the template catalogue
type CatalogHandler struct {
	classifier *service.Classifier
	templates  *service.TemplateLibrary
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(classifier *service.Classifier, templates *service.TemplateLibrary) *CatalogHandler {
	return &CatalogHandler{classifier: classifier, templates: templates}
}

// Classify handles POST /v1/classify
func (h *CatalogHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var bundle model.RestaurantSignalBundle
	if err := decodeBody(r, &bundle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.classifier.Explain(&bundle))
}

// Template handles GET /v1/templates/{cuisine}
func (h *CatalogHandler) Template(w http.ResponseWriter, r *http.Request) {
	cuisine := model.Cuisine(mux.Vars(r)["cuisine"])
	if !cuisine.IsKnown() {
		writeError(w, http.StatusNotFound, "unknown cuisine")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": h.templates.Version(),
		"cuisine": cuisine,
		"menu":    h.templates.TemplateFor(cuisine),
	})
}

// List handles GET /v1/templates
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":  h.templates.Version(),
		"cuisines": h.templates.Cuisines(),
	})
}
