package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestStatus_RoundTrip(t *testing.T) {
	tests := []struct {
		status Status
		label  string
	}{
		{InProgress(), "قيد التنفيذ"},
		{Completed(), "ناجح"},
		{CancelledBy("admin"), "ملغي بواسطة admin"},
		{CancelledBy("1"), "ملغي بواسطة 1"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := tt.status.String(); got != tt.label {
				t.Fatalf("String: got %q, want %q", got, tt.label)
			}
			if parsed := ParseStatus(tt.label); parsed != tt.status {
				t.Errorf("ParseStatus: got %+v, want %+v", parsed, tt.status)
			}
		})
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	s := ParseStatus("مرتجع")
	if s.Kind != StatusOther || s.String() != "مرتجع" {
		t.Fatalf("unknown label: got %+v", s)
	}
	if s.IsTerminal() || s.IsCancelled() {
		t.Errorf("unknown label must not be terminal or cancelled: %+v", s)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Status
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != s {
		t.Errorf("round trip: got %+v, want %+v", back, s)
	}

	if empty := ParseStatus(""); empty.Kind != StatusInProgress {
		t.Errorf("empty label: got %+v", empty)
	}
}

func TestMenu_PreservesOrder(t *testing.T) {
	raw := `{"Drinks": {"Water": 5, "Cola": 10}, "Main Dishes": {"Pizza": 60, "Burger": 50}}`

	var m Menu
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Categories[0].Name != "Drinks" || m.Categories[1].Name != "Main Dishes" {
		t.Fatalf("category order: got %v", m.Categories)
	}
	if m.Categories[0].Items[0].Name != "Water" {
		t.Errorf("item order: got %v", m.Categories[0].Items)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Drinks":{"Water":5,"Cola":10},"Main Dishes":{"Pizza":60,"Burger":50}}`
	if string(out) != want {
		t.Errorf("marshal: got %s, want %s", out, want)
	}
}

func TestMenu_DuplicateKeysLastWins(t *testing.T) {
	var m Menu
	if err := json.Unmarshal([]byte(`{"A": {"x": 1, "x": 2}}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(m.Categories[0].Items) != 1 {
		t.Fatalf("items: got %v", m.Categories[0].Items)
	}
	if !m.Categories[0].Items[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("price: got %s, want 2", m.Categories[0].Items[0].Price)
	}
}

func TestMenu_Price(t *testing.T) {
	m := DefaultMenu()
	p, ok := m.Price("Main Dishes", "Pizza")
	if !ok || !p.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Pizza: got %s, %v", p, ok)
	}
	if _, ok := m.Price("Main Dishes", "Cola"); ok {
		t.Error("Cola should not be found under Main Dishes")
	}
}

func TestMenu_CloneIsDeep(t *testing.T) {
	m := DefaultMenu()
	c := m.Clone()
	c.Categories[0].Items[0].Price = decimal.NewFromInt(1)
	if m.Categories[0].Items[0].Price.Equal(decimal.NewFromInt(1)) {
		t.Error("clone shares item storage with original")
	}
}

func TestNewOrder_Delivery(t *testing.T) {
	burger, _ := NewOrderItem("Burger", 2, decimal.NewFromInt(50))
	at := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	o, err := NewOrder(1234, []OrderItem{burger}, &Delivery{
		Location: "Street 1",
		Phone:    "0100",
		Fee:      decimal.NewFromInt(20),
	}, at)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if o.Total.StringFixed(2) != "120.00" {
		t.Errorf("total: got %s, want 120.00", o.Total.StringFixed(2))
	}
	if !o.IsDelivery() || *o.PhoneNumber != "0100" {
		t.Errorf("delivery fields not set: %+v", o)
	}
	if o.DateTime != "2024-01-01 12:30:00" {
		t.Errorf("datetime: got %q", o.DateTime)
	}
	if o.Status != InProgress() {
		t.Errorf("status: got %v", o.Status)
	}
}

func TestNewOrder_BlankLocationIsPickup(t *testing.T) {
	cola, _ := NewOrderItem("Cola", 1, decimal.NewFromInt(10))
	o, err := NewOrder(1000, []OrderItem{cola}, &Delivery{Phone: "0100", Fee: decimal.NewFromInt(15)}, time.Now())
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if o.IsDelivery() || o.PhoneNumber != nil {
		t.Errorf("expected pickup order, got %+v", o)
	}
	if !o.DeliveryFee.IsZero() || !o.Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("fee %s total %s", o.DeliveryFee, o.Total)
	}
}

func TestNewOrder_NegativeFee(t *testing.T) {
	_, err := NewOrder(1000, nil, &Delivery{Location: "x", Fee: decimal.NewFromInt(-1)}, time.Now())
	if !errors.Is(err, ErrInvalidDeliveryFee) {
		t.Errorf("got %v, want ErrInvalidDeliveryFee", err)
	}
}

func TestOrder_JSONKeys(t *testing.T) {
	item, _ := NewOrderItem("Fries", 3, decimal.NewFromInt(20))
	o, _ := NewOrder(4321, []OrderItem{item}, nil, time.Now())

	out, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"order_number":4321`, `"delivery_location":null`, `"phone_number":null`, `"status":"قيد التنفيذ"`, `"price":20`, `"total":60`, `"delivery_fee":0`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("missing %s in %s", key, out)
		}
	}
}

func TestOrder_AcceptsQuotedAmounts(t *testing.T) {
	raw := `{"order_number": 1001, "items": [{"name": "Cola", "quantity": 2, "price": "10", "total": "20"}],
		"total": "20", "delivery_location": null, "phone_number": null, "delivery_fee": "0",
		"datetime": "2024-01-01 12:00:00", "status": "ناجح"}`

	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !o.Total.Equal(decimal.NewFromInt(20)) || !o.Items[0].Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("amounts: total %s price %s", o.Total, o.Items[0].Price)
	}
	if o.Status != Completed() {
		t.Errorf("status: got %+v", o.Status)
	}
}

func TestOrder_WithStatusCopiesItems(t *testing.T) {
	item, _ := NewOrderItem("Fries", 1, decimal.NewFromInt(20))
	o, _ := NewOrder(1000, []OrderItem{item}, nil, time.Now())

	done := o.WithStatus(Completed())
	done.Items[0].Name = "changed"
	if o.Items[0].Name != "Fries" {
		t.Error("WithStatus shares items with the original")
	}
	if o.Status != InProgress() {
		t.Error("original status changed")
	}
}

func TestDailyRevenue_LegacyRowGetsNoID(t *testing.T) {
	var d DailyRevenue
	if err := json.Unmarshal([]byte(`["2024-01-01", "10:00:00", 100, "شفت النهار"]`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ID != uuid.Nil {
		t.Errorf("id: got %s, want nil", d.ID)
	}
	if d.Shift != ShiftDay || d.Month() != "2024-01" {
		t.Errorf("got %+v", d)
	}
}

func TestDailyRevenue_Validation(t *testing.T) {
	if _, err := NewDailyRevenue("2024-13-01", "", decimal.NewFromInt(1), ShiftDay); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad date: got %v", err)
	}
	if _, err := NewDailyRevenue("2024-01-01", "", decimal.NewFromInt(-1), ShiftDay); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative: got %v", err)
	}
	if _, err := NewDailyRevenue("2024-01-01", "", decimal.NewFromInt(1), Shift("evening")); !errors.Is(err, ErrInvalidShift) {
		t.Errorf("shift: got %v", err)
	}
}

func TestSupplierCost_KeepsInvalidCost(t *testing.T) {
	row := `["2024-01-02","09:00:00","Ali","Meat","","abc","كاش"]`

	var s SupplierCost
	if err := json.Unmarshal([]byte(row), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Cost.Valid {
		t.Fatal("expected invalid cost")
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"abc"`) {
		t.Errorf("raw cost lost: %s", out)
	}
}

func TestSupplierCost_IDSurvives(t *testing.T) {
	s, err := NewSupplierCost("2024-01-02", "09:00:00", "Ali", "Meat", "", decimal.NewFromInt(30), PaymentCredit)
	if err != nil {
		t.Fatalf("NewSupplierCost: %v", err)
	}
	out, _ := json.Marshal(s)

	var back SupplierCost
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != s.ID || !back.Cost.Decimal.Equal(s.Cost.Decimal) || back.PaymentType != PaymentCredit {
		t.Errorf("got %+v, want %+v", back, s)
	}
}
