package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockRevenueStore struct {
	ledger storage.RevenueLedger
}

func (m *mockRevenueStore) Snapshot() storage.RevenueLedger {
	out := storage.RevenueLedger{
		DailyRevenue:  append([]model.DailyRevenue(nil), m.ledger.DailyRevenue...),
		SupplierCosts: append([]model.SupplierCost(nil), m.ledger.SupplierCosts...),
	}
	return out
}

func (m *mockRevenueStore) Update(fn func(l *storage.RevenueLedger) error) error {
	next := m.Snapshot()
	if err := fn(&next); err != nil {
		return err
	}
	m.ledger = next
	return nil
}

func newRevenueService() (*RevenueService, *mockRevenueStore) {
	store := &mockRevenueStore{}
	svc := NewRevenueService(store)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC) }
	return svc, store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddDailyRevenue_DuplicateShift(t *testing.T) {
	svc, store := newRevenueService()

	if _, err := svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("100"), Shift: model.ShiftDay}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("80"), Shift: model.ShiftDay})
	if !errors.Is(err, ErrDuplicateShift) {
		t.Fatalf("got %v, want ErrDuplicateShift", err)
	}
	if len(store.ledger.DailyRevenue) != 1 {
		t.Errorf("entries: got %d, want 1", len(store.ledger.DailyRevenue))
	}

	if _, err := svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("60"), Shift: model.ShiftNight}); err != nil {
		t.Errorf("night shift same day: %v", err)
	}
}

func TestAddDailyRevenue_Defaults(t *testing.T) {
	svc, _ := newRevenueService()

	e, err := svc.AddDailyRevenue(DailyRevenueInput{Revenue: dec("10"), Shift: model.ShiftNight})
	if err != nil {
		t.Fatalf("AddDailyRevenue: %v", err)
	}
	if e.Date != "2024-03-15" || e.Time != "18:30:00" {
		t.Errorf("stamp: %s %s", e.Date, e.Time)
	}
	if e.ID == uuid.Nil {
		t.Error("no id assigned")
	}
}

func TestAddDailyRevenue_Invalid(t *testing.T) {
	svc, _ := newRevenueService()

	if _, err := svc.AddDailyRevenue(DailyRevenueInput{Revenue: dec("-1"), Shift: model.ShiftDay}); !errors.Is(err, model.ErrNegativeAmount) {
		t.Errorf("negative: got %v", err)
	}
	if _, err := svc.AddDailyRevenue(DailyRevenueInput{Revenue: dec("1"), Shift: "morning"}); !errors.Is(err, model.ErrInvalidShift) {
		t.Errorf("shift: got %v", err)
	}
}

func TestEditDailyRevenue(t *testing.T) {
	svc, _ := newRevenueService()

	day, _ := svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("100"), Shift: model.ShiftDay})
	night, _ := svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("50"), Shift: model.ShiftNight})

	// Same shift: no uniqueness conflict with itself.
	edited, err := svc.EditDailyRevenue(day.ID, DailyRevenueInput{Revenue: dec("120"), Shift: model.ShiftDay})
	if err != nil {
		t.Fatalf("edit amount: %v", err)
	}
	if edited.ID != day.ID || !edited.Revenue.Equal(dec("120")) || edited.Date != "2024-01-01" {
		t.Errorf("edited: %+v", edited)
	}

	_, err = svc.EditDailyRevenue(night.ID, DailyRevenueInput{Revenue: dec("50"), Shift: model.ShiftDay})
	if !errors.Is(err, ErrDuplicateShift) {
		t.Errorf("shift change onto taken slot: got %v", err)
	}

	if _, err := svc.EditDailyRevenue(uuid.New(), DailyRevenueInput{Revenue: dec("1"), Shift: model.ShiftDay}); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
}

func TestDeleteEntries(t *testing.T) {
	svc, store := newRevenueService()

	d, _ := svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("100"), Shift: model.ShiftDay})
	c, _ := svc.AddSupplierCost(SupplierCostInput{Date: "2024-01-01", Supplier: "Ali", Cost: dec("30"), PaymentType: model.PaymentCash})

	if err := svc.DeleteDailyRevenue(d.ID); err != nil {
		t.Fatalf("DeleteDailyRevenue: %v", err)
	}
	if err := svc.DeleteSupplierCost(c.ID); err != nil {
		t.Fatalf("DeleteSupplierCost: %v", err)
	}
	if len(store.ledger.DailyRevenue) != 0 || len(store.ledger.SupplierCosts) != 0 {
		t.Error("entries not deleted")
	}
	if err := svc.DeleteSupplierCost(c.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestEditSupplierCost(t *testing.T) {
	svc, _ := newRevenueService()

	c, _ := svc.AddSupplierCost(SupplierCostInput{Date: "2024-01-05", Time: "09:00:00", Supplier: "Ali", GoodsType: "Meat", Cost: dec("30"), PaymentType: model.PaymentCash})

	edited, err := svc.EditSupplierCost(c.ID, SupplierCostInput{Supplier: "Omar", GoodsType: "Bread", Cost: dec("12.5"), PaymentType: model.PaymentCredit})
	if err != nil {
		t.Fatalf("EditSupplierCost: %v", err)
	}
	if edited.Date != "2024-01-05" || edited.Time != "09:00:00" || edited.Supplier != "Omar" || edited.PaymentType != model.PaymentCredit {
		t.Errorf("edited: %+v", edited)
	}

	if _, err := svc.EditSupplierCost(c.ID, SupplierCostInput{Cost: dec("1"), PaymentType: "card"}); !errors.Is(err, model.ErrInvalidPaymentType) {
		t.Errorf("payment type: got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, _ := newRevenueService()
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Time: "10:00:00", Revenue: dec("1"), Shift: model.ShiftDay})
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-02-01", Time: "10:00:00", Revenue: dec("2"), Shift: model.ShiftDay})
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-15", Time: "10:00:00", Revenue: dec("3"), Shift: model.ShiftDay})

	rows := svc.ListDailyRevenue()
	if rows[0].Date != "2024-02-01" || rows[2].Date != "2024-01-01" {
		t.Errorf("order: %s, %s, %s", rows[0].Date, rows[1].Date, rows[2].Date)
	}
}

func TestMonthlyReport(t *testing.T) {
	svc, _ := newRevenueService()
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-02-03", Revenue: dec("50"), Shift: model.ShiftDay})
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("60"), Shift: model.ShiftDay})
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("40"), Shift: model.ShiftNight})
	svc.AddSupplierCost(SupplierCostInput{Date: "2024-01-10", Supplier: "Ali", Cost: dec("30"), PaymentType: model.PaymentCash})

	report := svc.MonthlyReport()

	want := []struct{ month, revenue, costs, profit string }{
		{"2024-01", "100", "30", "70"},
		{"2024-02", "50", "0", "50"},
	}
	if len(report.Rows) != len(want) {
		t.Fatalf("rows: got %d, want %d", len(report.Rows), len(want))
	}
	for i, w := range want {
		r := report.Rows[i]
		if r.Month != w.month || !r.Revenue.Equal(dec(w.revenue)) || !r.Costs.Equal(dec(w.costs)) || !r.Profit.Equal(dec(w.profit)) {
			t.Errorf("row %d: got %s %s %s %s, want %+v", i, r.Month, r.Revenue, r.Costs, r.Profit, w)
		}
	}

	tot := report.Total
	if tot.Month != TotalLabel || !tot.Revenue.Equal(dec("150")) || !tot.Costs.Equal(dec("30")) || !tot.Profit.Equal(dec("120")) {
		t.Errorf("total: %+v", tot)
	}
}

func TestSupplierReport_SkipsInvalidCost(t *testing.T) {
	svc, store := newRevenueService()
	svc.AddSupplierCost(SupplierCostInput{Date: "2024-01-02", Supplier: "Ali", Cost: dec("30"), PaymentType: model.PaymentCash})

	var legacy model.SupplierCost
	if err := json.Unmarshal([]byte(`["2024-01-01","08:00:00","Omar","Oil","","n/a","آجل"]`), &legacy); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	legacy.ID = uuid.New()
	store.ledger.SupplierCosts = append(store.ledger.SupplierCosts, legacy)

	report := svc.SupplierReport()
	if len(report.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(report.Rows))
	}
	if report.Rows[0].Supplier != "Omar" {
		t.Error("rows not chronological")
	}
	if !report.Total.Equal(dec("30")) {
		t.Errorf("total: got %s, want 30", report.Total)
	}

	monthly := svc.MonthlyReport()
	if !monthly.Total.Costs.Equal(dec("30")) {
		t.Errorf("monthly costs: got %s, want 30", monthly.Total.Costs)
	}
}

func TestDailyReport(t *testing.T) {
	svc, _ := newRevenueService()
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-02", Revenue: dec("20.5"), Shift: model.ShiftDay})
	svc.AddDailyRevenue(DailyRevenueInput{Date: "2024-01-01", Revenue: dec("10"), Shift: model.ShiftDay})

	report := svc.DailyReport()
	if report.Rows[0].Date != "2024-01-01" {
		t.Error("rows not chronological")
	}
	if !report.Total.Equal(dec("30.5")) {
		t.Errorf("total: got %s", report.Total)
	}
}
