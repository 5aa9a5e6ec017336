package storage

import (
	"fmt"
	"log"
	"sync"

	"github.com/ghanu-pos/api/internal/model"
)

// OrderLedger is the append-only history in orders.json. An order number
// may appear several times, once per recorded state.
type OrderLedger struct {
	path string
	mu   sync.Mutex
}

func NewOrderLedger(path string) *OrderLedger {
	return &OrderLedger{path: path}
}

// Load returns every recorded order. A missing or unparsable file is an
// empty ledger.
func (l *OrderLedger) Load() ([]model.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Append adds one record and rewrites the file. A ledger that parses but
// cannot be decoded is left untouched and the append fails.
func (l *OrderLedger) Append(o model.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load()
	if err != nil {
		return err
	}
	orders = append(orders, o)
	return writeJSON(l.path, orders)
}

func (l *OrderLedger) load() ([]model.Order, error) {
	orders := []model.Order{}
	if _, err := readJSON(l.path, &orders); err != nil {
		if !unparsable(err) {
			return nil, fmt.Errorf("order ledger: %w", err)
		}
		log.Printf("ERROR: order ledger: %v (treating as empty)", err)
		return []model.Order{}, nil
	}
	return orders, nil
}
