package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/assetpro/internal/imaging"
	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/model"
)

// AssetsHandler handles asset endpoints.
type AssetsHandler struct {
	Inv *inventory.Service
}

type conditionRequest struct {
	Condition string `json:"condition"`
}

type valueRequest struct {
	Value int64 `json:"value"`
}

// List handles GET /api/assets. When a limit is given and the page is full,
// the X-Next-After header carries the cursor for the next page.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.AssetFilter{
		TypeCode:          q.Get("type"),
		CustodianUsername: q.Get("custodian"),
		Condition:         q.Get("condition"),
		Location:          q.Get("location"),
		After:             q.Get("after"),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	assets := []model.Asset{}
	for a, err := range h.Inv.ListAssets(r.Context(), GetIdentity(r.Context()), f) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		assets = append(assets, a)
	}

	if f.Limit > 0 && len(assets) == f.Limit {
		w.Header().Set("X-Next-After", assets[len(assets)-1].Code)
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewAsset
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.Inv.CreateAsset(r.Context(), GetIdentity(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{code}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Inv.GetAsset(r.Context(), GetIdentity(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Lookup handles GET /api/lookup?code=, the target of label URLs.
func (h *AssetsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Inv.Lookup(r.Context(), GetIdentity(r.Context()), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PUT /api/assets/{code}.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.AssetUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.Inv.UpdateAsset(r.Context(), GetIdentity(r.Context()), r.PathValue("code"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// UpdateCondition handles PUT /api/assets/{code}/condition.
func (h *AssetsHandler) UpdateCondition(w http.ResponseWriter, r *http.Request) {
	var req conditionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.Inv.UpdateCondition(r.Context(), GetIdentity(r.Context()), r.PathValue("code"), req.Condition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// RecordValue handles PUT /api/assets/{code}/value.
func (h *AssetsHandler) RecordValue(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.Inv.RecordValue(r.Context(), GetIdentity(r.Context()), r.PathValue("code"), req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// UploadPhoto handles PUT /api/assets/{code}/photo. The photo is sent as the
// "photo" field of a multipart form.
func (h *AssetsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxPhotoBytes+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxPhotoBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	if err := h.Inv.SetAssetPhoto(r.Context(), GetIdentity(r.Context()), r.PathValue("code"), file); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/assets/{code}/photo.
func (h *AssetsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	data, mime, err := h.Inv.AssetPhoto(r.Context(), GetIdentity(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// Label handles GET /api/assets/{code}/qr.
func (h *AssetsHandler) Label(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	data, err := h.Inv.AssetLabel(r.Context(), GetIdentity(r.Context()), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="`+code+`.png"`)
	w.Write(data)
}

// Dashboard handles GET /api/dashboard.
func (h *AssetsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Inv.Dashboard(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}
