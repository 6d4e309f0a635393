package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"trinix-backend/config"
	"trinix-backend/services"
	"trinix-backend/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "routes-test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("desk-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	rs, err := store.NewCSVStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	t.Cleanup(func() { rs.Close() })

	settings := config.Settings{
		ReportsDir:        filepath.Join(dir, "reports"),
		StaffUsername:     "desk",
		StaffPasswordHash: string(hash),
		CORSOrigins:       []string{"http://localhost:3000"},
	}
	badges := services.NewBadgeService(filepath.Join(dir, "qr"), "Trinix Gaming")
	reports := services.NewReportService(settings.ReportsDir, "Trinix Gaming", "KES")

	return SetupRouter(Deps{
		Settings: settings,
		Store:    rs,
		Badges:   badges,
		Checkin:  services.NewCheckinService(rs, badges),
		Shifts:   services.NewShiftService(rs, reports, services.LogNotifier{}, "", "Trinix Gaming", "KES"),
		Exports:  services.NewExportService(settings.ReportsDir, "Trinix Gaming"),
	})
}

func TestSetupRouter_RequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/catalog", "/api/customers", "/api/dashboard", "/auth/me"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d", w.Code)
	}
}

func TestSetupRouter_LoginFlow(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(gin.H{"username": "desk", "password": "desk-pass"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}
	if w.Header().Get(config.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/api/catalog", "/api/customers", "/api/visits", "/api/dashboard", "/auth/me"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status %d, body %s", path, w.Code, w.Body.String())
		}
	}

	var me struct {
		Username string `json:"username"`
	}
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Username != "desk" {
		t.Errorf("me = %+v", me)
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/customers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
