package api

import (
	"net/http"

	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/model"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	Inv *inventory.Service
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Inv.ListUsers(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewUser
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Inv.CreateUser(r.Context(), GetIdentity(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{username}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Inv.GetUser(r.Context(), GetIdentity(r.Context()), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{username}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UserUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Inv.UpdateUser(r.Context(), GetIdentity(r.Context()), r.PathValue("username"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/{username}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Inv.ResetPassword(r.Context(), GetIdentity(r.Context()), r.PathValue("username"), req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{username}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Inv.DeleteUser(r.Context(), GetIdentity(r.Context()), r.PathValue("username")); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
