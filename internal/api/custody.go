package api

import (
	"net/http"

	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/model"
)

// CustodyHandler handles custody transfers and maintenance records.
type CustodyHandler struct {
	Inv *inventory.Service
}

type transferRequest struct {
	Custodian string `json:"custodian"`
	Note      string `json:"note"`
}

// Transfer handles POST /api/assets/{code}/custody.
func (h *CustodyHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Inv.TransferCustody(r.Context(), GetIdentity(r.Context()), r.PathValue("code"), req.Custodian, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

// History handles GET /api/assets/{code}/custody.
func (h *CustodyHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.Inv.CustodyHistory(r.Context(), GetIdentity(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if history == nil {
		history = []model.CustodyTransfer{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// RecordMaintenance handles POST /api/assets/{code}/maintenance.
func (h *CustodyHandler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	var req model.NewMaintenance
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Inv.RecordMaintenance(r.Context(), GetIdentity(r.Context()), r.PathValue("code"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, rec)
}

// Maintenance handles GET /api/assets/{code}/maintenance.
func (h *CustodyHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	records, err := h.Inv.MaintenanceHistory(r.Context(), GetIdentity(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []model.MaintenanceRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}
