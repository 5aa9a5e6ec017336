package storage

import (
	"log"
	"sync"

	"github.com/ghanu-pos/api/internal/model"
	"github.com/google/uuid"
)

// RevenueLedger is the content of revenue_management.json.
type RevenueLedger struct {
	DailyRevenue  []model.DailyRevenue `json:"daily_revenue"`
	SupplierCosts []model.SupplierCost `json:"supplier_costs"`
}

func (l RevenueLedger) clone() RevenueLedger {
	out := RevenueLedger{
		DailyRevenue:  make([]model.DailyRevenue, len(l.DailyRevenue)),
		SupplierCosts: make([]model.SupplierCost, len(l.SupplierCosts)),
	}
	copy(out.DailyRevenue, l.DailyRevenue)
	copy(out.SupplierCosts, l.SupplierCosts)
	return out
}

// RevenueFile keeps the revenue ledger in memory and on disk.
type RevenueFile struct {
	path   string
	mu     sync.Mutex
	ledger RevenueLedger
}

// OpenRevenueFile loads the ledger. A missing file is an empty ledger.
// Rows written without an id are given one and the file is rewritten.
func OpenRevenueFile(path string) (*RevenueFile, error) {
	f := &RevenueFile{path: path}

	if _, err := readJSON(path, &f.ledger); err != nil {
		return nil, err
	}
	if f.ledger.DailyRevenue == nil {
		f.ledger.DailyRevenue = []model.DailyRevenue{}
	}
	if f.ledger.SupplierCosts == nil {
		f.ledger.SupplierCosts = []model.SupplierCost{}
	}

	assigned := 0
	for i := range f.ledger.DailyRevenue {
		if f.ledger.DailyRevenue[i].ID == uuid.Nil {
			f.ledger.DailyRevenue[i].ID = uuid.New()
			assigned++
		}
	}
	for i := range f.ledger.SupplierCosts {
		if f.ledger.SupplierCosts[i].ID == uuid.Nil {
			f.ledger.SupplierCosts[i].ID = uuid.New()
			assigned++
		}
	}
	if assigned > 0 {
		log.Printf("revenue: assigned ids to %d legacy rows", assigned)
		if err := writeJSON(path, f.ledger); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Snapshot returns a copy of the ledger.
func (f *RevenueFile) Snapshot() RevenueLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.clone()
}

// Update applies fn to a copy of the ledger and persists the result. Nothing
// changes when fn or the write fails.
func (f *RevenueFile) Update(fn func(*RevenueLedger) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.ledger.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := writeJSON(f.path, next); err != nil {
		return err
	}
	f.ledger = next
	return nil
}

// Flush writes the in-memory ledger to disk.
func (f *RevenueFile) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return writeJSON(f.path, f.ledger)
}
