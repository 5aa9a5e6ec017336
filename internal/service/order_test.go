package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghanu-pos/api/internal/cart"
	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/events"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

type mockQueue struct {
	orders    []model.Order
	appendErr error
}

func (m *mockQueue) List() []model.Order {
	out := make([]model.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *mockQueue) Find(number string) (model.Order, bool) {
	for _, o := range m.orders {
		if o.NumberString() == number {
			return o, true
		}
	}
	return model.Order{}, false
}

func (m *mockQueue) Append(o model.Order) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.orders = append(m.orders, o)
	return nil
}

func (m *mockQueue) Replace(o model.Order) error {
	for i := range m.orders {
		if m.orders[i].OrderNumber == o.OrderNumber {
			m.orders[i] = o
			return nil
		}
	}
	return errors.New("not queued")
}

func (m *mockQueue) Remove(number string) error {
	for i := range m.orders {
		if m.orders[i].NumberString() == number {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return errors.New("not queued")
}

type mockLedger struct {
	orders    []model.Order
	appendErr error
}

func (m *mockLedger) Load() ([]model.Order, error) { return m.orders, nil }

func (m *mockLedger) Append(o model.Order) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.orders = append(m.orders, o)
	return nil
}

type mockArchive struct {
	archived []model.Order
	err      error
}

func (m *mockArchive) Archive(_ context.Context, o model.Order) error {
	m.archived = append(m.archived, o)
	return m.err
}

type mockPublisher struct {
	events []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) error {
	m.events = append(m.events, e)
	return nil
}

// --- Test helpers ---

type orderFixture struct {
	svc     *OrderService
	queue   *mockQueue
	ledger  *mockLedger
	archive *mockArchive
	pub     *mockPublisher
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		queue:   &mockQueue{},
		ledger:  &mockLedger{},
		archive: &mockArchive{},
		pub:     &mockPublisher{},
	}
	f.svc = NewOrderService(f.queue, f.ledger, f.archive, f.pub)
	f.svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

// fixedNumbers makes the random source return the given order numbers in turn.
func (f *orderFixture) fixedNumbers(numbers ...int) {
	i := 0
	f.svc.randInt = func(int) int {
		n := numbers[i%len(numbers)] - model.MinOrderNumber
		i++
		return n
	}
}

func burgerLines() []cart.Line {
	return []cart.Line{{Name: "Burger", Quantity: 2, Price: decimal.NewFromInt(50)}}
}

func (f *orderFixture) place(t *testing.T, number int) model.Order {
	t.Helper()
	f.fixedNumbers(number)
	o, err := f.svc.PlaceOrder(context.Background(), burgerLines(), nil)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	return o
}

// --- PlaceOrder ---

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	_, err := f.svc.PlaceOrder(context.Background(), nil, nil)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("got %v, want ErrEmptyCart", err)
	}
	if len(f.queue.orders) != 0 || len(f.ledger.orders) != 0 {
		t.Error("empty cart changed state")
	}
}

func TestPlaceOrder_DeliveryTotal(t *testing.T) {
	f := newOrderFixture()
	f.fixedNumbers(4321)

	o, err := f.svc.PlaceOrder(context.Background(), burgerLines(), &model.Delivery{
		Location: "Street 1",
		Phone:    "0100",
		Fee:      decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if o.Total.StringFixed(2) != "120.00" {
		t.Errorf("total: got %s, want 120.00", o.Total.StringFixed(2))
	}
	if o.Status != model.InProgress() {
		t.Errorf("status: got %v", o.Status)
	}
	if o.OrderNumber != 4321 {
		t.Errorf("number: got %d", o.OrderNumber)
	}
	if len(f.queue.orders) != 1 || len(f.ledger.orders) != 1 {
		t.Fatalf("queue=%d ledger=%d, want 1 each", len(f.queue.orders), len(f.ledger.orders))
	}
	if len(f.archive.archived) != 1 {
		t.Error("order not archived")
	}
	if len(f.pub.events) != 1 || f.pub.events[0].Type != enum.EventOrderCreated {
		t.Errorf("events: %+v", f.pub.events)
	}
}

func TestPlaceOrder_NegativeFee(t *testing.T) {
	f := newOrderFixture()
	_, err := f.svc.PlaceOrder(context.Background(), burgerLines(), &model.Delivery{
		Location: "x",
		Fee:      decimal.NewFromInt(-5),
	})
	if !errors.Is(err, ErrInvalidDeliveryFee) {
		t.Fatalf("got %v, want ErrInvalidDeliveryFee", err)
	}
	if len(f.queue.orders) != 0 {
		t.Error("invalid order queued")
	}
}

func TestPlaceOrder_RetriesQueuedNumber(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1111)

	f.fixedNumbers(1111, 1111, 2222)
	o, err := f.svc.PlaceOrder(context.Background(), burgerLines(), nil)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if o.OrderNumber != 2222 {
		t.Errorf("number: got %d, want 2222", o.OrderNumber)
	}
}

func TestPlaceOrder_NumbersExhausted(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1111)

	f.fixedNumbers(1111)
	_, err := f.svc.PlaceOrder(context.Background(), burgerLines(), nil)
	if !errors.Is(err, ErrOrderNumberExhausted) {
		t.Fatalf("got %v, want ErrOrderNumberExhausted", err)
	}
}

func TestPlaceOrder_LedgerFailureRollsBackQueue(t *testing.T) {
	f := newOrderFixture()
	f.ledger.appendErr = errors.New("disk full")
	f.fixedNumbers(1234)

	if _, err := f.svc.PlaceOrder(context.Background(), burgerLines(), nil); err == nil {
		t.Fatal("expected error")
	}
	if len(f.queue.orders) != 0 {
		t.Error("queued order not rolled back")
	}
}

func TestPlaceOrder_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture()
	f.archive.err = errors.New("db down")
	f.place(t, 1234)
	if len(f.queue.orders) != 1 {
		t.Error("order not queued")
	}
}

// --- Finish / Cancel / Remove ---

func TestFinishOrder(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1234)

	done, err := f.svc.FinishOrder(context.Background(), "1234")
	if err != nil {
		t.Fatalf("FinishOrder: %v", err)
	}
	if done.Status != model.Completed() {
		t.Errorf("status: got %v", done.Status)
	}
	if len(f.queue.orders) != 0 {
		t.Error("finished order still queued")
	}
	if len(f.ledger.orders) != 2 {
		t.Fatalf("ledger records: got %d, want 2", len(f.ledger.orders))
	}
	if f.ledger.orders[0].Status != model.InProgress() || f.ledger.orders[1].Status != model.Completed() {
		t.Errorf("ledger statuses: %v, %v", f.ledger.orders[0].Status, f.ledger.orders[1].Status)
	}
}

func TestFinishOrder_Cancelled(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1234)

	if _, err := f.svc.CancelOrder(context.Background(), "1234", "admin"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	ledgerBefore := len(f.ledger.orders)

	_, err := f.svc.FinishOrder(context.Background(), "1234")
	if !errors.Is(err, ErrOrderCancelled) {
		t.Fatalf("got %v, want ErrOrderCancelled", err)
	}
	if len(f.queue.orders) != 1 || len(f.ledger.orders) != ledgerBefore {
		t.Error("rejected finish changed state")
	}
}

func TestFinishOrder_NotFound(t *testing.T) {
	f := newOrderFixture()
	if _, err := f.svc.FinishOrder(context.Background(), "9999"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
}

func TestCancelOrder_KeepsInQueue(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1234)

	c, err := f.svc.CancelOrder(context.Background(), "1234", "1")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if c.Status.String() != "ملغي بواسطة 1" {
		t.Errorf("status: got %q", c.Status)
	}
	if len(f.queue.orders) != 1 || f.queue.orders[0].Status != model.CancelledBy("1") {
		t.Errorf("queue: %+v", f.queue.orders)
	}
	if last := f.ledger.orders[len(f.ledger.orders)-1]; last.Status != model.CancelledBy("1") {
		t.Errorf("ledger last status: %v", last.Status)
	}

	if _, err := f.svc.CancelOrder(context.Background(), "1234", "admin"); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("second cancel: got %v, want ErrAlreadyCancelled", err)
	}
}

func TestRemoveOrder_LeavesLedger(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1234)

	if _, err := f.svc.RemoveOrder(context.Background(), "1234", "admin"); err != nil {
		t.Fatalf("RemoveOrder: %v", err)
	}
	if len(f.queue.orders) != 0 {
		t.Error("order still queued")
	}
	if len(f.ledger.orders) != 1 {
		t.Errorf("ledger records: got %d, want 1", len(f.ledger.orders))
	}
	if last := f.pub.events[len(f.pub.events)-1]; last.Type != enum.EventOrderRemoved {
		t.Errorf("last event: %s", last.Type)
	}
}

// --- Reports ---

func TestReports_FilterAndSearch(t *testing.T) {
	f := newOrderFixture()
	f.place(t, 1111)
	f.place(t, 2222)
	f.place(t, 3333)
	f.svc.FinishOrder(context.Background(), "1111")
	f.svc.CancelOrder(context.Background(), "2222", "admin")

	all, err := f.svc.Reports("")
	if err != nil {
		t.Fatalf("Reports: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("reports: got %d, want 2", len(all))
	}

	found, _ := f.svc.Reports("2222")
	if len(found) != 1 || !found[0].Status.IsCancelled() {
		t.Errorf("search 2222: %+v", found)
	}

	none, _ := f.svc.Reports("222")
	if len(none) != 0 {
		t.Error("search must be an exact match")
	}

	if _, err := f.svc.ReportOrder("3333"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("in-progress order in reports: %v", err)
	}
}
