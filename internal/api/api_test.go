package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/model"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	inv *inventory.Service
}

func setupTestServer(t *testing.T) (*testServer, string) {
	t.Helper()
	database := db.NewTestDB(t)

	inv, err := inventory.New(database, nil, inventory.Config{
		BaseURL:      "https://assets.example.com",
		PasswordCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("creating inventory: %v", err)
	}
	if _, err := inv.Bootstrap(context.Background(), "password"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	server := httptest.NewServer(NewRouter(inv, database, testJWTSecret))
	t.Cleanup(server.Close)

	ts := &testServer{Server: server, inv: inv}
	return ts, ts.login(t, "admin", "password")
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends an authenticated request, checks the status and decodes the
// response into out when it is non-nil.
func do(t *testing.T, method, url, token string, body any, wantStatus int, out any) *http.Response {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var e map[string]string
		json.NewDecoder(resp.Body).Decode(&e)
		t.Fatalf("%s %s: expected %d, got %d (%s)", method, url, wantStatus, resp.StatusCode, e["error"])
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, creds := range []map[string]string{
		{"username": "admin", "password": "wrong"},
		{"username": "nobody", "password": "password"},
	} {
		body, _ := json.Marshal(creds)
		resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 for %v, got %d", creds, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusOK, nil)
	do(t, "POST", server.URL+"/api/auth/logout", token, nil, http.StatusOK, nil)
	do(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusUnauthorized, nil)
}

func TestAssetsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/asset-types", token, map[string]string{"code": "EL", "label": "Electronics"}, http.StatusCreated, nil)
	do(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "alice", "display_name": "Alice", "password": "pw", "role": model.RoleUser,
	}, http.StatusCreated, nil)

	var asset model.Asset
	do(t, "POST", server.URL+"/api/assets", token, map[string]any{
		"name": "Projector", "type_code": "EL", "location": "Room 101", "custodian_username": "alice", "value": 45000,
	}, http.StatusCreated, &asset)
	if asset.Code != "TV001" || asset.Condition != model.ConditionNew {
		t.Fatalf("unexpected asset: %+v", asset)
	}

	do(t, "PUT", server.URL+"/api/assets/TV001/condition", token, map[string]string{"condition": model.ConditionGood}, http.StatusOK, &asset)
	if asset.Condition != model.ConditionGood {
		t.Errorf("expected Good, got %s", asset.Condition)
	}
	do(t, "PUT", server.URL+"/api/assets/TV001/condition", token, map[string]string{"condition": "Lost"}, http.StatusBadRequest, nil)

	var assets []model.Asset
	do(t, "GET", server.URL+"/api/assets?custodian=alice", token, nil, http.StatusOK, &assets)
	if len(assets) != 1 {
		t.Errorf("expected 1 asset for alice, got %d", len(assets))
	}

	do(t, "POST", server.URL+"/api/assets", token, map[string]any{
		"name": "Laptop", "type_code": "EL", "location": "Store",
	}, http.StatusCreated, nil)
	resp := do(t, "GET", server.URL+"/api/assets?limit=1", token, nil, http.StatusOK, &assets)
	if got := resp.Header.Get("X-Next-After"); got != "TV001" {
		t.Errorf("expected next cursor TV001, got %q", got)
	}
	do(t, "GET", server.URL+"/api/assets?after=TV001", token, nil, http.StatusOK, &assets)
	if len(assets) != 1 || assets[0].Code != "TV002" {
		t.Errorf("expected TV002 after cursor, got %+v", assets)
	}

	var looked model.Asset
	do(t, "GET", server.URL+"/api/lookup?code=TV002", token, nil, http.StatusOK, &looked)
	if looked.Name != "Laptop" {
		t.Errorf("lookup returned %q", looked.Name)
	}

	do(t, "GET", server.URL+"/api/assets/TV999", token, nil, http.StatusNotFound, nil)
	do(t, "POST", server.URL+"/api/assets", token, map[string]any{
		"name": "Ghost", "type_code": "ZZ", "location": "x",
	}, http.StatusUnprocessableEntity, nil)
	do(t, "DELETE", server.URL+"/api/asset-types/EL", token, nil, http.StatusConflict, nil)
}

func TestCustodyAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/asset-types", token, map[string]string{"code": "EL", "label": "Electronics"}, http.StatusCreated, nil)
	do(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "bob", "display_name": "Bob", "password": "pw",
	}, http.StatusCreated, nil)
	do(t, "POST", server.URL+"/api/assets", token, map[string]any{
		"name": "Camera", "type_code": "EL", "location": "Studio",
	}, http.StatusCreated, nil)

	var transfer model.CustodyTransfer
	do(t, "POST", server.URL+"/api/assets/TV001/custody", token, map[string]string{"custodian": "bob", "note": "shoot"}, http.StatusCreated, &transfer)
	if transfer.ToUsername != "bob" || transfer.TransferredBy != "admin" {
		t.Errorf("unexpected transfer: %+v", transfer)
	}
	do(t, "POST", server.URL+"/api/assets/TV001/custody", token, map[string]string{"custodian": "bob"}, http.StatusBadRequest, nil)

	do(t, "POST", server.URL+"/api/assets/TV001/maintenance", token, map[string]any{
		"performed_on": "2024-03-01", "description": "Sensor clean", "cost": 2500,
	}, http.StatusCreated, nil)

	bobToken := server.login(t, "bob", "pw")

	var history []model.CustodyTransfer
	do(t, "GET", server.URL+"/api/assets/TV001/custody", bobToken, nil, http.StatusOK, &history)
	if len(history) != 1 {
		t.Errorf("expected 1 transfer, got %d", len(history))
	}

	var records []model.MaintenanceRecord
	do(t, "GET", server.URL+"/api/assets/TV001/maintenance", bobToken, nil, http.StatusOK, &records)
	if len(records) != 1 || records[0].Cost != 2500 {
		t.Errorf("unexpected maintenance records: %+v", records)
	}

	var d model.Dashboard
	do(t, "GET", server.URL+"/api/dashboard", bobToken, nil, http.StatusOK, &d)
	if len(d.InCustody) != 1 || d.TotalAssets != 1 {
		t.Errorf("unexpected dashboard: %+v", d)
	}
}

func TestLabelAndPhoto(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/asset-types", token, map[string]string{"code": "EL", "label": "Electronics"}, http.StatusCreated, nil)
	do(t, "POST", server.URL+"/api/assets", token, map[string]any{
		"name": "Printer", "type_code": "EL", "location": "Office",
	}, http.StatusCreated, nil)

	req, _ := authRequest("GET", server.URL+"/api/assets/TV001/qr", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected PNG label, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Errorf("decoding label: %v", err)
	}
	resp.Body.Close()

	do(t, "GET", server.URL+"/api/assets/TV001/photo", token, nil, http.StatusNotFound, nil)

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var photo bytes.Buffer
	png.Encode(&photo, img)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("photo", "printer.png")
	fw.Write(photo.Bytes())
	mw.Close()

	req, _ = http.NewRequest("PUT", server.URL+"/api/assets/TV001/photo", &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for photo upload, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/assets/TV001/photo", token, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected stored JPEG, got %s", resp.Header.Get("Content-Type"))
	}
	if _, err := jpeg.Decode(resp.Body); err != nil {
		t.Errorf("decoding stored photo: %v", err)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/assets")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	do(t, "GET", server.URL+"/api/assets", "garbage", nil, http.StatusUnauthorized, nil)
}

func TestRoleBasedAccess(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "user1", "display_name": "User One", "password": "pass",
	}, http.StatusCreated, nil)
	userToken := server.login(t, "user1", "pass")

	do(t, "POST", server.URL+"/api/asset-types", userToken, map[string]string{"code": "FU", "label": "Furniture"}, http.StatusForbidden, nil)
	do(t, "GET", server.URL+"/api/users", userToken, nil, http.StatusForbidden, nil)
	do(t, "GET", server.URL+"/api/asset-types", userToken, nil, http.StatusOK, nil)
	do(t, "PUT", server.URL+"/api/auth/password", userToken, map[string]string{
		"current_password": "pass", "new_password": "new",
	}, http.StatusOK, nil)

	// Deleting the user invalidates their token immediately.
	do(t, "DELETE", server.URL+"/api/users/user1", token, nil, http.StatusOK, nil)
	do(t, "GET", server.URL+"/api/asset-types", userToken, nil, http.StatusUnauthorized, nil)

	do(t, "DELETE", server.URL+"/api/users/admin", token, nil, http.StatusForbidden, nil)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrDuplicateIdentity, http.StatusConflict},
		{model.ErrDuplicateKey, http.StatusConflict},
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrInvalidInput, http.StatusBadRequest},
		{model.ErrInvalidReference, http.StatusUnprocessableEntity},
		{model.ErrInUse, http.StatusConflict},
		{model.ErrForbidden, http.StatusForbidden},
		{model.ErrUnauthenticated, http.StatusUnauthorized},
		{model.ErrBusy, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest("GET", "/", nil), model.ErrBusy)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After on busy response")
	}
}
