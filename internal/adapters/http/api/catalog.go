package api

import (
	"net/http"

	"github.com/okian/lingprofile/internal/domain/catalog"
)

// CatalogHandler serves the external test catalog.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleList handles GET /catalog.
func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog())
}

// HandleCreate handles POST /catalog/custom.
func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_custom_test"
	var in catalog.CustomInput
	if err := decodeBody(r, &in); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	d, err := h.deps.CreateCustomTest(r.Context(), in)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// HandleUpdate handles PUT /catalog/custom/{id}.
func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_custom_test"
	var in catalog.CustomInput
	if err := decodeBody(r, &in); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	d, err := h.deps.UpdateCustomTest(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleDelete handles DELETE /catalog/custom/{id}.
func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteCustomTest(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, Wrap("api.delete_custom_test", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
