package api

import (
	"net/http"

	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/model"
)

// AssetTypesHandler handles asset type endpoints.
type AssetTypesHandler struct {
	Inv *inventory.Service
}

type createAssetTypeRequest struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// List handles GET /api/asset-types.
func (h *AssetTypesHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Inv.ListAssetTypes(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if types == nil {
		types = []model.AssetType{}
	}
	jsonResponse(w, http.StatusOK, types)
}

// Create handles POST /api/asset-types.
func (h *AssetTypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssetTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Inv.CreateAssetType(r.Context(), GetIdentity(r.Context()), req.Code, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

// Delete handles DELETE /api/asset-types/{code}.
func (h *AssetTypesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Inv.DeleteAssetType(r.Context(), GetIdentity(r.Context()), r.PathValue("code")); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset type deleted"})
}
