package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/ghanu-pos/api/internal/export"
	"github.com/ghanu-pos/api/internal/handler"
	"github.com/ghanu-pos/api/internal/middleware"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/printer"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/ghanu-pos/api/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// --- Mock revenue store ---

type memRevenueStore struct {
	ledger storage.RevenueLedger
}

func (m *memRevenueStore) Snapshot() storage.RevenueLedger {
	return storage.RevenueLedger{
		DailyRevenue:  append([]model.DailyRevenue(nil), m.ledger.DailyRevenue...),
		SupplierCosts: append([]model.SupplierCost(nil), m.ledger.SupplierCosts...),
	}
}

func (m *memRevenueStore) Update(fn func(l *storage.RevenueLedger) error) error {
	next := m.Snapshot()
	if err := fn(&next); err != nil {
		return err
	}
	m.ledger = next
	return nil
}

func setupRevenueRouter(store *memRevenueStore, p *mockPrinter) *chi.Mux {
	h := handler.NewRevenueHandler(service.NewRevenueService(store), p)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Use(middleware.RequireRole("admin"))
	r.Route("/revenue", h.RegisterRoutes)
	return r
}

// --- Daily revenue tests ---

func TestDailyRevenue_AddListDelete(t *testing.T) {
	store := &memRevenueStore{}
	router := setupRevenueRouter(store, &mockPrinter{})

	rr := doAuthRequest(t, router, "POST", "/revenue/daily", map[string]string{
		"date":    "2025-03-01",
		"time":    "22:00:00",
		"revenue": "١٬٥٠٠",
		"shift":   "night",
	}, admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: got %d; body: %s", rr.Code, rr.Body.String())
	}
	created := decodeResponse(t, rr)
	if created["shift"] != string(model.ShiftNight) {
		t.Errorf("shift: %v", created["shift"])
	}
	if created["date"] != "2025-03-01" {
		t.Errorf("date: %v", created["date"])
	}

	list := decodeList(t, doAuthRequest(t, router, "GET", "/revenue/daily", nil, admin))
	if len(list) != 1 {
		t.Fatalf("list: %v", list)
	}

	id, _ := created["id"].(string)
	if rr := doAuthRequest(t, router, "DELETE", "/revenue/daily/"+id, nil, admin); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	if len(store.ledger.DailyRevenue) != 0 {
		t.Errorf("entry not deleted: %+v", store.ledger.DailyRevenue)
	}
}

func TestDailyRevenue_Errors(t *testing.T) {
	store := &memRevenueStore{}
	router := setupRevenueRouter(store, &mockPrinter{})

	first := map[string]string{"date": "2025-03-01", "time": "10:00:00", "revenue": "500", "shift": "day"}
	if rr := doAuthRequest(t, router, "POST", "/revenue/daily", first, admin); rr.Code != http.StatusCreated {
		t.Fatalf("seed: got %d; body: %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"duplicate shift", "POST", "/revenue/daily", first, http.StatusConflict},
		{"bad amount", "POST", "/revenue/daily", map[string]string{"revenue": "lots", "shift": "day"}, http.StatusBadRequest},
		{"negative amount", "POST", "/revenue/daily", map[string]string{"date": "2025-03-02", "revenue": "-5", "shift": "day"}, http.StatusBadRequest},
		{"bad shift", "POST", "/revenue/daily", map[string]string{"date": "2025-03-02", "revenue": "5", "shift": "evening"}, http.StatusBadRequest},
		{"bad time", "POST", "/revenue/daily", map[string]string{"date": "2025-03-02", "time": "25:99", "revenue": "5", "shift": "day"}, http.StatusBadRequest},
		{"bad id", "PUT", "/revenue/daily/not-a-uuid", first, http.StatusBadRequest},
		{"missing entry", "DELETE", "/revenue/daily/" + uuid.NewString(), nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, tt.method, tt.path, tt.body, admin)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestDailyRevenue_CashierForbidden(t *testing.T) {
	router := setupRevenueRouter(&memRevenueStore{}, &mockPrinter{})
	if rr := doAuthRequest(t, router, "GET", "/revenue/daily", nil, cashier); rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

// --- Supplier cost tests ---

func TestSupplierCost_AddAndEdit(t *testing.T) {
	store := &memRevenueStore{}
	router := setupRevenueRouter(store, &mockPrinter{})

	rr := doAuthRequest(t, router, "POST", "/revenue/supplier-costs", map[string]string{
		"date":         "2025-03-01",
		"time":         "09:30:00",
		"supplier":     "Ahmed",
		"goods_type":   "Meat",
		"cost":         "2k",
		"payment_type": "cash",
	}, admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: got %d; body: %s", rr.Code, rr.Body.String())
	}
	created := decodeResponse(t, rr)
	if created["cost"] != "2000.00" {
		t.Errorf("cost: %v", created["cost"])
	}

	rr = doAuthRequest(t, router, "PUT", "/revenue/supplier-costs/"+created["id"].(string), map[string]string{
		"supplier":     "Ahmed",
		"goods_type":   "Meat",
		"notes":        "late",
		"cost":         "1800",
		"payment_type": "credit",
	}, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("edit: got %d; body: %s", rr.Code, rr.Body.String())
	}
	edited := decodeResponse(t, rr)
	if edited["date"] != "2025-03-01" || edited["notes"] != "late" || edited["cost"] != "1800.00" {
		t.Errorf("edited: %v", edited)
	}

	if rr := doAuthRequest(t, router, "POST", "/revenue/supplier-costs", map[string]string{
		"supplier": "X", "goods_type": "Y", "cost": "5", "payment_type": "barter",
	}, admin); rr.Code != http.StatusBadRequest {
		t.Errorf("bad payment type: got %d, want 400", rr.Code)
	}
}

// --- Report tests ---

func seedLedger(t *testing.T) *memRevenueStore {
	t.Helper()
	day, err := model.NewDailyRevenue("2025-03-01", "12:00:00", decimal.NewFromInt(1000), model.ShiftDay)
	if err != nil {
		t.Fatalf("NewDailyRevenue: %v", err)
	}
	cost, err := model.NewSupplierCost("2025-03-02", "09:00:00", "Ahmed", "Meat", "", decimal.NewFromInt(400), model.PaymentCash)
	if err != nil {
		t.Fatalf("NewSupplierCost: %v", err)
	}
	return &memRevenueStore{ledger: storage.RevenueLedger{
		DailyRevenue:  []model.DailyRevenue{day},
		SupplierCosts: []model.SupplierCost{cost},
	}}
}

func TestRevenueReports(t *testing.T) {
	router := setupRevenueRouter(seedLedger(t), &mockPrinter{})

	rr := doAuthRequest(t, router, "GET", "/revenue/reports/monthly", nil, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("monthly: got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	rows := resp["rows"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("monthly rows: %v", rows)
	}
	month := rows[0].([]interface{})
	if month[0] != "2025-03" || month[3] != "600.00" {
		t.Errorf("month row: %v", month)
	}

	for _, kind := range []string{"daily", "supplier"} {
		if rr := doAuthRequest(t, router, "GET", "/revenue/reports/"+kind, nil, admin); rr.Code != http.StatusOK {
			t.Errorf("%s: got %d", kind, rr.Code)
		}
	}

	if rr := doAuthRequest(t, router, "GET", "/revenue/reports/weekly", nil, admin); rr.Code != http.StatusNotFound {
		t.Errorf("unknown kind: got %d, want 404", rr.Code)
	}
}

func TestRevenueReports_Print(t *testing.T) {
	p := &mockPrinter{}
	router := setupRevenueRouter(seedLedger(t), p)

	rr := doAuthRequest(t, router, "POST", "/revenue/reports/daily/print", nil, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if len(p.kinds) != 1 || p.kinds[0] != printer.KindRevenue {
		t.Errorf("printed kinds: %v", p.kinds)
	}
	if !strings.HasPrefix(p.texts[0], "تقرير\n\n") {
		t.Errorf("document:\n%s", p.texts[0])
	}
}

func TestRevenueReports_Export(t *testing.T) {
	router := setupRevenueRouter(seedLedger(t), &mockPrinter{})

	rr := doAuthRequest(t, router, "GET", "/revenue/reports/supplier/export", nil, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("content type: %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "supplier_report.xlsx") {
		t.Errorf("content disposition: %q", cd)
	}

	file, err := xlsx.OpenBinary(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	if _, ok := file.Sheet["supplier"]; !ok {
		t.Errorf("sheets: %v", file.Sheet)
	}
}
