package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"trinix-backend/models"
	"trinix-backend/services"
	"trinix-backend/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router  *gin.Engine
	store   *store.CSVStore
	badges  *services.BadgeService
	reports string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	rs, err := store.NewCSVStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	t.Cleanup(func() { rs.Close() })

	reportsDir := filepath.Join(dir, "reports")
	badges := services.NewBadgeService(filepath.Join(dir, "qr"), "Trinix Gaming")
	checkin := services.NewCheckinService(rs, badges)
	reports := services.NewReportService(reportsDir, "Trinix Gaming", "KES")
	shifts := services.NewShiftService(rs, reports, services.LogNotifier{}, "", "Trinix Gaming", "KES")

	cc := &CustomerController{Store: rs, Badges: badges}
	vc := &VisitController{Store: rs, Checkin: checkin}
	chk := &CheckinController{Checkin: checkin}
	rc := &ReportController{
		Store:      rs,
		Shifts:     shifts,
		Exports:    services.NewExportService(reportsDir, "Trinix Gaming"),
		ReportsDir: reportsDir,
	}
	dc := &DashboardController{Store: rs}

	r := gin.New()
	r.GET("/catalog", GetCatalog)
	r.POST("/customers", cc.CreateCustomer)
	r.GET("/customers", cc.GetCustomers)
	r.GET("/customers/search", cc.SearchCustomers)
	r.GET("/customers/:id", cc.GetCustomer)
	r.PUT("/customers/:id", cc.UpdateCustomer)
	r.DELETE("/customers/:id", cc.DeleteCustomer)
	r.GET("/customers/:id/visits", cc.GetCustomerVisits)
	r.GET("/customers/:id/frequency", cc.GetCustomerFrequency)
	r.GET("/customers/:id/badge", cc.GetCustomerBadge)
	r.POST("/customers/:id/badge", cc.RegenerateCustomerBadge)
	r.POST("/visits", vc.CreateVisit)
	r.GET("/visits", vc.GetVisits)
	r.POST("/checkin/scan", chk.Scan)
	r.GET("/checkin/lookup", chk.Lookup)
	r.GET("/reports/sales", rc.GetSales)
	r.GET("/reports/shift", rc.GetShift)
	r.POST("/reports/shift/close", rc.CloseShift)
	r.POST("/reports/export", rc.Export)
	r.GET("/reports/download/:name", rc.Download)
	r.GET("/dashboard", dc.GetDashboardOverview)

	return &testServer{router: r, store: rs, badges: badges, reports: reportsDir}
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func asha() gin.H {
	return gin.H{
		"name":       "Asha",
		"phone":      "0712345678",
		"age_group":  "21-25 years",
		"location":   "Nairobi",
		"occupation": "Student",
	}
}

func (ts *testServer) register(t *testing.T, body gin.H) models.Customer {
	t.Helper()
	w := ts.do(http.MethodPost, "/customers", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", w.Code, w.Body.String())
	}
	var c models.Customer
	decode(t, w, &c)
	return c
}

func TestCreateCustomer(t *testing.T) {
	ts := newTestServer(t)

	c := ts.register(t, asha())
	if c.ID != 1 || c.Phone != "0712345678" {
		t.Errorf("unexpected customer %+v", c)
	}
	if c.QRCodePath == "" {
		t.Fatal("expected a badge path")
	}
	if _, err := os.Stat(c.QRCodePath); err != nil {
		t.Errorf("badge not written: %v", err)
	}

	stored, _ := ts.store.GetCustomer(context.Background(), c.ID)
	if stored == nil || stored.QRCodePath != c.QRCodePath {
		t.Errorf("badge path not persisted: %+v", stored)
	}
}

func TestCreateCustomer_Validation(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, asha())

	tests := []struct {
		name  string
		patch gin.H
		want  int
	}{
		{"duplicate phone", gin.H{}, http.StatusConflict},
		{"short phone", gin.H{"phone": "07123"}, http.StatusBadRequest},
		{"decimal phone", gin.H{"phone": "712345678.0"}, http.StatusBadRequest},
		{"blank name", gin.H{"name": "   ", "phone": "0799999999"}, http.StatusBadRequest},
		{"bad age group", gin.H{"age_group": "99 years", "phone": "0799999999"}, http.StatusBadRequest},
		{"bad occupation", gin.H{"occupation": "Pilot", "phone": "0799999999"}, http.StatusBadRequest},
		{"missing field", gin.H{"location": nil, "phone": "0799999999"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := asha()
			for k, v := range tt.patch {
				if v == nil {
					delete(body, k)
					continue
				}
				body[k] = v
			}
			if w := ts.do(http.MethodPost, "/customers", body); w.Code != tt.want {
				t.Errorf("status %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCustomerCRUD(t *testing.T) {
	ts := newTestServer(t)
	c := ts.register(t, asha())
	path := "/customers/" + strconv.Itoa(c.ID)

	if w := ts.do(http.MethodGet, "/customers/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/customers/42", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing customer: status %d", w.Code)
	}

	w := ts.do(http.MethodPut, path, gin.H{"name": "Asha Otieno", "location": "Kilimani"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body.String())
	}
	var updated models.Customer
	decode(t, w, &updated)
	if updated.Name != "Asha Otieno" || updated.Location != "Kilimani" || updated.Phone != "0712345678" {
		t.Errorf("unexpected update result %+v", updated)
	}

	if w := ts.do(http.MethodPut, path, gin.H{"phone": "123"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad phone update: status %d", w.Code)
	}
	if w := ts.do(http.MethodPut, "/customers/42", gin.H{"name": "Ghost"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing: status %d", w.Code)
	}

	if w := ts.do(http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Errorf("delete: status %d", w.Code)
	}
	if w := ts.do(http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d", w.Code)
	}
}

func TestGetCustomers_Filters(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, asha())
	ts.register(t, gin.H{
		"name": "Kevin", "phone": "0733000000", "age_group": "26-30 years",
		"location": "Karen", "occupation": "Professional",
	})

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?q=kev", 1},
		{"?q=0712", 1},
		{"?q=karen", 1},
		{"?occupation=Student", 1},
		{"?age_group=26-30%20years&occupation=Student", 0},
	}
	for _, tt := range tests {
		w := ts.do(http.MethodGet, "/customers"+tt.query, nil)
		var got []models.Customer
		decode(t, w, &got)
		if len(got) != tt.want {
			t.Errorf("GET /customers%s returned %d customers, want %d", tt.query, len(got), tt.want)
		}
	}

	if w := ts.do(http.MethodGet, "/customers/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search without q: status %d", w.Code)
	}
	w := ts.do(http.MethodGet, "/customers/search?q=0733000000", nil)
	var found []models.Customer
	decode(t, w, &found)
	if len(found) != 1 || found[0].Name != "Kevin" {
		t.Errorf("search by phone returned %+v", found)
	}
}

func TestCreateVisit(t *testing.T) {
	ts := newTestServer(t)
	c := ts.register(t, asha())

	w := ts.do(http.MethodPost, "/visits", gin.H{
		"customer_id":    c.ID,
		"game_genre":     "Racing",
		"console":        "PS5",
		"payment_method": "Cash",
		"payment_amount": 150,
		"snacks_amount":  50,
		"friends_count":  2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		VisitID       int             `json:"visit_id"`
		Points        int             `json:"points"`
		Customer      models.Customer `json:"customer"`
		WalkInCreated bool            `json:"walk_in_created"`
	}
	decode(t, w, &resp)
	if resp.VisitID != 1 || resp.Points != 10 || resp.Customer.ID != c.ID || resp.WalkInCreated {
		t.Errorf("unexpected response %+v", resp)
	}

	w = ts.do(http.MethodGet, "/visits", nil)
	var visits []models.Visit
	decode(t, w, &visits)
	if len(visits) != 1 || visits[0].FriendsCount != 2 {
		t.Errorf("GET /visits = %+v", visits)
	}

	w = ts.do(http.MethodGet, "/customers/1/frequency", nil)
	var freq struct {
		TotalVisits int    `json:"total_visits"`
		Frequency   string `json:"frequency"`
	}
	decode(t, w, &freq)
	if freq.TotalVisits != 1 || freq.Frequency != "First Visit" {
		t.Errorf("frequency = %+v", freq)
	}
}

func TestCreateVisit_Errors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, asha())

	base := func() gin.H {
		return gin.H{
			"customer_id":    1,
			"game_genre":     "Football",
			"console":        "PS4",
			"payment_method": "Card",
			"payment_amount": 100,
		}
	}

	tests := []struct {
		name  string
		patch gin.H
		want  int
	}{
		{"unknown customer", gin.H{"customer_id": 99}, http.StatusNotFound},
		{"bad console", gin.H{"console": "Xbox"}, http.StatusBadRequest},
		{"bad genre", gin.H{"game_genre": "Puzzle"}, http.StatusBadRequest},
		{"bad payment method", gin.H{"payment_method": "Cheque"}, http.StatusBadRequest},
		{"negative payment", gin.H{"payment_amount": -5}, http.StatusBadRequest},
		{"negative friends", gin.H{"friends_count": -1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			for k, v := range tt.patch {
				body[k] = v
			}
			if w := ts.do(http.MethodPost, "/visits", body); w.Code != tt.want {
				t.Errorf("status %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCreateVisit_WalkIn(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, asha())

	body := gin.H{
		"walk_in_name":   "asha",
		"game_genre":     "Horror",
		"console":        "PS5",
		"payment_method": "Mobile Money (MPESA)",
		"payment_amount": 50,
	}
	w := ts.do(http.MethodPost, "/visits", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Customer      models.Customer `json:"customer"`
		WalkInCreated bool            `json:"walk_in_created"`
	}
	decode(t, w, &resp)
	if resp.Customer.ID != 1 || resp.WalkInCreated {
		t.Errorf("expected existing customer by name, got %+v", resp)
	}

	body["walk_in_name"] = "Zawadi"
	body["walk_in_phone"] = "0700111222"
	w = ts.do(http.MethodPost, "/visits", body)
	decode(t, w, &resp)
	if w.Code != http.StatusCreated || !resp.WalkInCreated || resp.Customer.Phone != "0700111222" {
		t.Errorf("expected new walk-in customer, got %d %+v", w.Code, resp)
	}
	if resp.Customer.Occupation != models.Unknown {
		t.Errorf("walk-in occupation = %q", resp.Customer.Occupation)
	}

	body["walk_in_name"] = "Someone"
	body["walk_in_phone"] = "0700"
	if w := ts.do(http.MethodPost, "/visits", body); w.Code != http.StatusBadRequest {
		t.Errorf("short walk-in phone: status %d", w.Code)
	}
}

func TestCheckin(t *testing.T) {
	ts := newTestServer(t)
	c := ts.register(t, asha())

	w := ts.do(http.MethodPost, "/checkin/scan", gin.H{"data": services.BadgeToken(c)})
	if w.Code != http.StatusOK {
		t.Fatalf("scan: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Customer models.Customer `json:"customer"`
	}
	decode(t, w, &resp)
	if resp.Customer.ID != c.ID {
		t.Errorf("scan resolved %+v", resp.Customer)
	}

	if w := ts.do(http.MethodPost, "/checkin/scan", gin.H{"data": "TRINIX-CUSTOMER:9:Nobody:0799999999"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown badge: status %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/checkin/scan", gin.H{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing data: status %d", w.Code)
	}

	if w := ts.do(http.MethodGet, "/checkin/lookup", nil); w.Code != http.StatusBadRequest {
		t.Errorf("lookup without params: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/checkin/lookup?phone=0712345678", nil); w.Code != http.StatusOK {
		t.Errorf("lookup by phone: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/checkin/lookup?name=Nobody", nil); w.Code != http.StatusNotFound {
		t.Errorf("lookup miss: status %d", w.Code)
	}
}

func TestCheckin_ScanImage(t *testing.T) {
	ts := newTestServer(t)
	c := ts.register(t, asha())

	badge, err := os.ReadFile(c.QRCodePath)
	if err != nil {
		t.Fatalf("read badge: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "badge.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(badge)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/checkin/scan", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data     string          `json:"data"`
		Customer models.Customer `json:"customer"`
	}
	decode(t, w, &resp)
	if resp.Data != services.BadgeToken(c) || resp.Customer.ID != c.ID {
		t.Errorf("unexpected scan result %+v", resp)
	}
}

func TestGetCustomerBadge(t *testing.T) {
	ts := newTestServer(t)
	c := ts.register(t, asha())
	os.Remove(c.QRCodePath)

	w := ts.do(http.MethodGet, "/customers/1/badge", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("badge response is not a PNG")
	}

	w = ts.do(http.MethodPost, "/customers/1/badge", nil)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	if resp.Token != "TRINIX-CUSTOMER:1:Asha:0712345678" {
		t.Errorf("token = %q", resp.Token)
	}
}

func TestReports(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(http.MethodGet, "/reports/sales?from=2025-13-01", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/reports/sales?from=2025-03-10&to=2025-03-01", nil); w.Code != http.StatusBadRequest {
		t.Errorf("reversed range: status %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/reports/shift/close", nil); w.Code != http.StatusNotFound {
		t.Errorf("close empty shift: status %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/reports/export", gin.H{"from": "2025-01-01", "to": "2025-01-31"}); w.Code != http.StatusNotFound {
		t.Errorf("empty export: status %d", w.Code)
	}

	c := ts.register(t, asha())
	ts.do(http.MethodPost, "/visits", gin.H{
		"customer_id": c.ID, "game_genre": "Racing", "console": "PS5",
		"payment_method": "Cash", "payment_amount": 200, "snacks_amount": 30,
	})

	w := ts.do(http.MethodGet, "/reports/shift", nil)
	var summary struct {
		TotalCustomers int `json:"total_customers"`
	}
	decode(t, w, &summary)
	if summary.TotalCustomers != 1 {
		t.Errorf("shift total customers = %d", summary.TotalCustomers)
	}

	w = ts.do(http.MethodPost, "/reports/shift/close", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("close shift: status %d, body %s", w.Code, w.Body.String())
	}
	var closed struct {
		Report   string `json:"report"`
		Notified bool   `json:"notified"`
	}
	decode(t, w, &closed)
	if closed.Notified {
		t.Error("no manager phone, expected notified=false")
	}

	w = ts.do(http.MethodGet, "/reports/download/"+closed.Report, nil)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("download report: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/reports/download/missing.pdf", nil); w.Code != http.StatusNotFound {
		t.Errorf("download missing: status %d", w.Code)
	}

	w = ts.do(http.MethodPost, "/reports/export", gin.H{"from": "2000-01-01", "to": "2999-12-31"})
	if w.Code != http.StatusCreated {
		t.Fatalf("export: status %d, body %s", w.Code, w.Body.String())
	}
	var bundle services.ExportBundle
	decode(t, w, &bundle)
	if bundle.Visits != 1 || bundle.Customers != 1 {
		t.Errorf("unexpected bundle %+v", bundle)
	}
	if _, err := os.Stat(filepath.Join(ts.reports, bundle.Archive)); err != nil {
		t.Errorf("archive missing: %v", err)
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	c := ts.register(t, asha())
	for i := 0; i < 12; i++ {
		ts.do(http.MethodPost, "/visits", gin.H{
			"customer_id": c.ID, "game_genre": "Sports", "console": "PS4",
			"payment_method": "Cash", "payment_amount": 100,
		})
	}

	w := ts.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		TotalCustomers int           `json:"total_customers"`
		TotalVisits    int           `json:"total_visits"`
		RecentVisits   []RecentVisit `json:"recent_visits"`
		Today          struct {
			TotalCustomers int `json:"total_customers"`
		} `json:"today"`
	}
	decode(t, w, &resp)
	if resp.TotalCustomers != 1 || resp.TotalVisits != 12 || resp.Today.TotalCustomers != 1 {
		t.Errorf("unexpected dashboard %+v", resp)
	}
	if len(resp.RecentVisits) != 10 || resp.RecentVisits[0].CustomerName != "Asha" {
		t.Errorf("recent visits = %d", len(resp.RecentVisits))
	}
	if resp.RecentVisits[0].VisitID != 12 {
		t.Errorf("most recent visit id = %d, want 12", resp.RecentVisits[0].VisitID)
	}
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/catalog", nil)
	var cat models.Catalog
	decode(t, w, &cat)
	if len(cat.Consoles) != 2 || len(cat.PaymentMethods) != 4 {
		t.Errorf("unexpected catalog %+v", cat)
	}
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	login := func(ac *AuthController, username, password string) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/login", ac.Login)
		b, _ := json.Marshal(LoginInput{Username: username, Password: password})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := login(&AuthController{}, "desk", "s3cret"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured login: status %d", w.Code)
	}

	ac := &AuthController{Username: "desk", PasswordHash: string(hash)}
	if w := login(ac, "desk", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d", w.Code)
	}

	w := login(ac, "desk", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("expected a token cookie")
	}
}
