package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/assetpro/internal/access"
	"github.com/erazemk/assetpro/internal/inventory"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(inv *inventory.Service, db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Inv: inv, DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{Inv: inv}
	typesHandler := &AssetTypesHandler{Inv: inv}
	assetsHandler := &AssetsHandler{Inv: inv}
	custodyHandler := &CustodyHandler{Inv: inv}

	authMW := AuthMiddleware(jwtSecret, db, inv)
	route := func(pattern string, op access.Operation, h http.HandlerFunc) {
		mux.Handle(pattern, authMW(Require(op)(h)))
	}

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	route("PUT /api/auth/password", access.ChangePassword, authHandler.ChangePassword)
	route("GET /api/dashboard", access.ViewDashboard, assetsHandler.Dashboard)

	// Users (admin only).
	route("GET /api/users", access.ListUsers, usersHandler.List)
	route("POST /api/users", access.CreateUser, usersHandler.Create)
	route("GET /api/users/{username}", access.ListUsers, usersHandler.Get)
	route("PUT /api/users/{username}", access.UpdateUser, usersHandler.Update)
	route("PUT /api/users/{username}/password", access.UpdateUser, usersHandler.ResetPassword)
	route("DELETE /api/users/{username}", access.DeleteUser, usersHandler.Delete)

	// Asset types.
	route("GET /api/asset-types", access.ListAssetTypes, typesHandler.List)
	route("POST /api/asset-types", access.CreateAssetType, typesHandler.Create)
	route("DELETE /api/asset-types/{code}", access.DeleteAssetType, typesHandler.Delete)

	// Assets.
	route("GET /api/assets", access.ListAssets, assetsHandler.List)
	route("POST /api/assets", access.CreateAsset, assetsHandler.Create)
	route("GET /api/assets/{code}", access.ViewAsset, assetsHandler.Get)
	route("PUT /api/assets/{code}", access.UpdateAsset, assetsHandler.Update)
	route("PUT /api/assets/{code}/condition", access.UpdateAsset, assetsHandler.UpdateCondition)
	route("PUT /api/assets/{code}/value", access.UpdateAsset, assetsHandler.RecordValue)
	route("PUT /api/assets/{code}/photo", access.UpdateAsset, assetsHandler.UploadPhoto)
	route("GET /api/assets/{code}/photo", access.ViewAsset, assetsHandler.GetPhoto)
	route("GET /api/assets/{code}/qr", access.PrintLabel, assetsHandler.Label)
	route("GET /api/lookup", access.ViewAsset, assetsHandler.Lookup)

	// Custody and maintenance.
	route("POST /api/assets/{code}/custody", access.TransferCustody, custodyHandler.Transfer)
	route("GET /api/assets/{code}/custody", access.ViewHistory, custodyHandler.History)
	route("POST /api/assets/{code}/maintenance", access.RecordMaintenance, custodyHandler.RecordMaintenance)
	route("GET /api/assets/{code}/maintenance", access.ViewHistory, custodyHandler.Maintenance)

	return mux
}
