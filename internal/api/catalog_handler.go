package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mysteryvault/storefront/internal/catalog"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ListProducts serves the box catalog, optionally filtered by category or
// narrowed to the popular picks.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var boxes []catalog.Box
	if r.URL.Query().Get("popular") == "true" {
		boxes = catalog.Popular()
	} else {
		boxes = catalog.ByCategory(r.URL.Query().Get("category"))
	}
	if boxes == nil {
		boxes = []catalog.Box{}
	}

	respondJSON(w, http.StatusOK, struct {
		Products []catalog.Box `json:"products"`
	}{Products: boxes})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "id must be a positive integer")
		return
	}

	box, ok := catalog.ByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Product catalog.Box `json:"product"`
	}{Product: box})
}
