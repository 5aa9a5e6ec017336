package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ghanu-pos/api/internal/cart"
	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/events"
	"github.com/ghanu-pos/api/internal/model"
)

// Order numbers are random, so a collision with a queued order is retried.
// The ledger is not consulted: the same number can recur in history.
const maxOrderNumberRetries = 20

// Errors returned by the order service.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderCancelled       = errors.New("order is cancelled")
	ErrAlreadyCancelled     = errors.New("order is already cancelled")
	ErrOrderNumberExhausted = errors.New("no free order number")
	ErrInvalidDeliveryFee   = model.ErrInvalidDeliveryFee
)

// QueueStore is the current-orders queue.
// Satisfied by *storage.OrderQueue; narrow interface for testability.
type QueueStore interface {
	List() []model.Order
	Find(number string) (model.Order, bool)
	Append(o model.Order) error
	Replace(o model.Order) error
	Remove(number string) error
}

// LedgerStore is the append-only order history.
// Satisfied by *storage.OrderLedger; narrow interface for testability.
type LedgerStore interface {
	Load() ([]model.Order, error)
	Append(o model.Order) error
}

// Archiver mirrors ledger appends elsewhere. Failures are logged only.
// Satisfied by *storage.LedgerArchive.
type Archiver interface {
	Archive(ctx context.Context, o model.Order) error
}

// OrderService runs placement and the finish/cancel/remove workflow.
type OrderService struct {
	queue     QueueStore
	ledger    LedgerStore
	archive   Archiver
	publisher events.Publisher

	// mu serialises workflow steps so number allocation and queue
	// transitions see a consistent queue.
	mu sync.Mutex

	now     func() time.Time
	randInt func(n int) int
}

// NewOrderService creates a new OrderService. archive and publisher may be nil.
func NewOrderService(queue QueueStore, ledger LedgerStore, archive Archiver, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		queue:     queue,
		ledger:    ledger,
		archive:   archive,
		publisher: publisher,
		now:       time.Now,
		randInt:   rand.IntN,
	}
}

// PlaceOrder snapshots the cart lines into a new in-progress order, queues
// it and records it in the ledger. delivery may be nil for pickup.
func (s *OrderService) PlaceOrder(ctx context.Context, lines []cart.Line, delivery *model.Delivery) (model.Order, error) {
	if len(lines) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		it, err := model.NewOrderItem(l.Name, l.Quantity, l.Price)
		if err != nil {
			return model.Order{}, fmt.Errorf("line %q: %w", l.Name, err)
		}
		items = append(items, it)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	number, err := s.nextOrderNumber()
	if err != nil {
		return model.Order{}, err
	}

	order, err := model.NewOrder(number, items, delivery, s.now())
	if err != nil {
		return model.Order{}, err
	}

	if err := s.queue.Append(order); err != nil {
		return model.Order{}, fmt.Errorf("queue order %d: %w", number, err)
	}
	if err := s.ledger.Append(order); err != nil {
		if rbErr := s.queue.Remove(order.NumberString()); rbErr != nil {
			log.Printf("ERROR: rollback queued order %d: %v", number, rbErr)
		}
		return model.Order{}, fmt.Errorf("record order %d: %w", number, err)
	}

	s.afterLedgerAppend(ctx, enum.EventOrderCreated, order, "")
	return order, nil
}

func (s *OrderService) nextOrderNumber() (int, error) {
	span := model.MaxOrderNumber - model.MinOrderNumber + 1
	for i := 0; i < maxOrderNumberRetries; i++ {
		n := model.MinOrderNumber + s.randInt(span)
		if _, taken := s.queue.Find(fmt.Sprint(n)); !taken {
			return n, nil
		}
	}
	return 0, ErrOrderNumberExhausted
}

// FinishOrder records the order as completed and removes it from the queue.
// A cancelled order cannot be finished.
func (s *OrderService) FinishOrder(ctx context.Context, number string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queued, ok := s.queue.Find(number)
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	if queued.Status.IsCancelled() {
		return model.Order{}, ErrOrderCancelled
	}

	done := queued.WithStatus(model.Completed())
	if err := s.ledger.Append(done); err != nil {
		return model.Order{}, fmt.Errorf("record completion of %s: %w", number, err)
	}
	if err := s.queue.Remove(number); err != nil {
		return model.Order{}, fmt.Errorf("dequeue %s: %w", number, err)
	}

	s.afterLedgerAppend(ctx, enum.EventOrderCompleted, done, "")
	return done, nil
}

// CancelOrder records the cancellation and marks the queued order. The order
// stays in the queue until the owner removes it.
func (s *OrderService) CancelOrder(ctx context.Context, number, actor string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queued, ok := s.queue.Find(number)
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	if queued.Status.IsCancelled() {
		return model.Order{}, ErrAlreadyCancelled
	}

	cancelled := queued.WithStatus(model.CancelledBy(actor))
	if err := s.ledger.Append(cancelled); err != nil {
		return model.Order{}, fmt.Errorf("record cancellation of %s: %w", number, err)
	}
	if err := s.queue.Replace(cancelled); err != nil {
		return model.Order{}, fmt.Errorf("update queued %s: %w", number, err)
	}

	s.afterLedgerAppend(ctx, enum.EventOrderCancelled, cancelled, actor)
	return cancelled, nil
}

// RemoveOrder drops an order from the queue without touching the ledger.
// Callers must have checked the owner password.
func (s *OrderService) RemoveOrder(ctx context.Context, number, actor string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queued, ok := s.queue.Find(number)
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	if err := s.queue.Remove(number); err != nil {
		return model.Order{}, fmt.Errorf("dequeue %s: %w", number, err)
	}

	s.publish(ctx, enum.EventOrderRemoved, queued, actor)
	return queued, nil
}

// Queue lists the orders awaiting completion.
func (s *OrderService) Queue() []model.Order {
	return s.queue.List()
}

// QueuedOrder returns one queued order.
func (s *OrderService) QueuedOrder(number string) (model.Order, error) {
	o, ok := s.queue.Find(number)
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// Reports returns completed and cancelled ledger records in ledger order.
// A non-empty search keeps only records whose number equals it exactly.
func (s *OrderService) Reports(search string) ([]model.Order, error) {
	all, err := s.ledger.Load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	out := []model.Order{}
	for _, o := range all {
		if !o.Status.IsTerminal() {
			continue
		}
		if search != "" && o.NumberString() != search {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// ReportOrder returns the most recent completed or cancelled record for number.
func (s *OrderService) ReportOrder(number string) (model.Order, error) {
	reports, err := s.Reports(number)
	if err != nil {
		return model.Order{}, err
	}
	if len(reports) == 0 {
		return model.Order{}, ErrOrderNotFound
	}
	return reports[len(reports)-1], nil
}

func (s *OrderService) afterLedgerAppend(ctx context.Context, eventType string, o model.Order, actor string) {
	if s.archive != nil {
		if err := s.archive.Archive(ctx, o); err != nil {
			log.Printf("ERROR: archive order %d: %v", o.OrderNumber, err)
		}
	}
	s.publish(ctx, eventType, o, actor)
}

func (s *OrderService) publish(ctx context.Context, eventType string, o model.Order, actor string) {
	if err := s.publisher.Publish(ctx, events.New(eventType, o, actor)); err != nil {
		log.Printf("ERROR: publish %s for order %d: %v", eventType, o.OrderNumber, err)
	}
}
