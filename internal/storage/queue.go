package storage

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ghanu-pos/api/internal/model"
)

// ErrNotInQueue is returned when no queued order carries the number.
var ErrNotInQueue = errors.New("order not in queue")

// OrderQueue holds the orders awaiting completion, mirrored to
// current_orders.json after every change.
type OrderQueue struct {
	path   string
	mu     sync.Mutex
	orders []model.Order
}

// OpenOrderQueue loads the queue file, creating an empty one if missing.
// An unparsable file is logged and replaced by an empty queue; one that
// parses but does not decode is an error and stays on disk.
func OpenOrderQueue(path string) (*OrderQueue, error) {
	q := &OrderQueue{path: path, orders: []model.Order{}}

	found, err := readJSON(path, &q.orders)
	if err != nil {
		if !unparsable(err) {
			return nil, fmt.Errorf("order queue: %w", err)
		}
		log.Printf("ERROR: order queue: %v (starting empty)", err)
		q.orders = []model.Order{}
		found = false
	}
	if !found {
		if err := writeJSON(path, q.orders); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// List returns a copy of the queued orders in placement order.
func (q *OrderQueue) List() []model.Order {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.Order, len(q.orders))
	for i, o := range q.orders {
		out[i] = o.WithStatus(o.Status)
	}
	return out
}

// Find looks up a queued order by its number string.
func (q *OrderQueue) Find(number string) (model.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.index(number); i >= 0 {
		return q.orders[i].WithStatus(q.orders[i].Status), true
	}
	return model.Order{}, false
}

// Append adds an order to the end of the queue and persists.
func (q *OrderQueue) Append(o model.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.orders = append(q.orders, o)
	if err := writeJSON(q.path, q.orders); err != nil {
		q.orders = q.orders[:len(q.orders)-1]
		return err
	}
	return nil
}

// Replace swaps the queued order with the same number and persists.
func (q *OrderQueue) Replace(o model.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.index(o.NumberString())
	if i < 0 {
		return ErrNotInQueue
	}
	prev := q.orders[i]
	q.orders[i] = o
	if err := writeJSON(q.path, q.orders); err != nil {
		q.orders[i] = prev
		return err
	}
	return nil
}

// Remove drops the queued order with the given number and persists.
func (q *OrderQueue) Remove(number string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.index(number)
	if i < 0 {
		return ErrNotInQueue
	}
	next := make([]model.Order, 0, len(q.orders)-1)
	next = append(next, q.orders[:i]...)
	next = append(next, q.orders[i+1:]...)
	if err := writeJSON(q.path, next); err != nil {
		return err
	}
	q.orders = next
	return nil
}

// Flush writes the in-memory queue to disk.
func (q *OrderQueue) Flush() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return writeJSON(q.path, q.orders)
}

func (q *OrderQueue) index(number string) int {
	for i, o := range q.orders {
		if o.NumberString() == number {
			return i
		}
	}
	return -1
}
