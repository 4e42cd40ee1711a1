package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/assetpro/internal/auth"
	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Inv       *inventory.Service
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	id, err := h.Inv.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "user", id.Username, "role", id.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, GetIdentity(r.Context()))
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Inv.ChangePassword(r.Context(), GetIdentity(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
