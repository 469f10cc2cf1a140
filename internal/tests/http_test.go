package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"fleet/internal/app"
	"fleet/internal/config"
	"fleet/internal/handler"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// 6. HTTP API (memory backend)
// ──────────────────────────────────────────────

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory},
		Trips: config.TripsConfig{Currency: "INR", CreatedBy: "Admin"},
	}

	stores, err := app.NewStores(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("new stores: %v", err)
	}

	resolver := service.NewAssignmentResolver()
	tripService := service.NewTripService(
		stores.Trips,
		stores.Reference,
		service.NewLifecycleController(stores.Trips),
		resolver,
		service.NewNotificationService(nil),
		service.TripOptions{Currency: cfg.Trips.Currency, CreatedBy: cfg.Trips.CreatedBy},
	)

	return app.NewRouter(app.RouterDeps{
		TripHandler:      handler.NewTripHandler(tripService),
		ReferenceHandler: handler.NewReferenceHandler(service.NewReferenceService(stores.Reference, resolver)),
	})
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var createBody = map[string]any{
	"customerName":    "ABC Industries",
	"customerPhone":   "+91 98765 00001",
	"route":           "Mumbai-Pune",
	"assignedDriver":  "Rajesh Kumar",
	"assignedVehicle": "MH-12-AB-1234",
	"scheduledDate":   "2025-03-20",
	"scheduledTime":   "09:00",
	"cargoType":       "Electronics",
	"cargoWeight":     "5 tons",
	"tripStatus":      "scheduled",
	"tripValue":       "₹85,000",
	"advancePayment":  25000,
}

func TestHTTP_CreateStartAndStats(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/trips", createBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created handler.TripWithAssignmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Trip.ID != 1 || !strings.HasPrefix(created.Trip.TripID, "TRIP-") {
		t.Errorf("unexpected ids: %d %s", created.Trip.ID, created.Trip.TripID)
	}
	if created.Trip.BalancePayment != "60000.00" || created.Trip.PaymentStatus != "advance_paid" {
		t.Errorf("unexpected settlement: %s %s", created.Trip.BalancePayment, created.Trip.PaymentStatus)
	}
	if created.Trip.StartPoint != "Mumbai, Maharashtra" {
		t.Errorf("expected derived start point, got %q", created.Trip.StartPoint)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/trips/1/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/trips/1/start", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second start, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/trips/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats struct {
		InProgress   int    `json:"inProgress"`
		Total        int    `json:"total"`
		TotalRevenue string `json:"totalRevenue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.InProgress != 1 || stats.Total != 1 || stats.TotalRevenue != "85000" {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHTTP_ValidationErrorListsFields(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/trips", map[string]any{"customerName": "Only Name"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp handler.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Fields) != 9 || resp.Fields[0] != "customerPhone" {
		t.Errorf("unexpected fields: %v", resp.Fields)
	}
}

func TestHTTP_NotFoundAndBadID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodGet, "/v1/trips/7", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/v1/trips/abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodDelete, "/v1/trips/7", nil); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 deleting a missing trip, got %d", rec.Code)
	}
}

func TestHTTP_UpdateWithStaleVersion(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodPost, "/v1/trips", createBody); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodPut, "/v1/trips/1", map[string]any{"cargoWeight": "6 tons", "version": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/trips/1", map[string]any{"cargoWeight": "7 tons", "version": 1})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHTTP_ReferenceCatalogs(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/drivers?status=available", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var drivers []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &drivers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, d := range drivers {
		if d["status"] != "available" {
			t.Errorf("expected only available drivers, got %v", d)
		}
	}
	if len(drivers) == 0 {
		t.Error("expected seeded drivers")
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/routes", nil)
	var routes []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &routes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(routes) == 0 || routes[0]["startPoint"] == "" {
		t.Errorf("expected routes with derived points, got %v", routes)
	}
}

func TestHTTP_ExportWorkbook(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodPost, "/v1/trips", createBody); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/trips/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	customer, err := f.GetCellValue("Trips", "B4")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if customer != "ABC Industries" {
		t.Errorf("expected ABC Industries in B4, got %q", customer)
	}
}
