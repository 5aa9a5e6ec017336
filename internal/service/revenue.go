package service

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by the revenue service.
var (
	ErrDuplicateShift = errors.New("revenue for this date and shift already exists")
	ErrEntryNotFound  = errors.New("entry not found")
)

// TotalLabel names the totals row of the monthly report.
const TotalLabel = "الإجمالي"

// RevenueStore is the revenue ledger file.
// Satisfied by *storage.RevenueFile; narrow interface for testability.
type RevenueStore interface {
	Snapshot() storage.RevenueLedger
	Update(fn func(l *storage.RevenueLedger) error) error
}

// DailyRevenueInput is a daily revenue form.
// Empty Date and Time default to now.
type DailyRevenueInput struct {
	Date    string
	Time    string
	Revenue decimal.Decimal
	Shift   model.Shift
}

// SupplierCostInput is a supplier purchase form. Empty Date and Time default to now.
type SupplierCostInput struct {
	Date        string
	Time        string
	Supplier    string
	GoodsType   string
	Notes       string
	Cost        decimal.Decimal
	PaymentType model.PaymentType
}

// RevenueService manages manual revenue and supplier cost entries.
type RevenueService struct {
	store RevenueStore
	now   func() time.Time
}

func NewRevenueService(store RevenueStore) *RevenueService {
	return &RevenueService{store: store, now: time.Now}
}

func (s *RevenueService) stamp(date, clock string) (string, string) {
	now := s.now()
	if date == "" {
		date = now.Format(model.DateLayout)
	}
	if clock == "" {
		clock = now.Format(model.TimeLayout)
	}
	return date, clock
}

// --- Daily revenue ---

// AddDailyRevenue records one shift total. Only one entry per date and shift.
func (s *RevenueService) AddDailyRevenue(in DailyRevenueInput) (model.DailyRevenue, error) {
	date, clock := s.stamp(in.Date, in.Time)
	entry, err := model.NewDailyRevenue(date, clock, in.Revenue, in.Shift)
	if err != nil {
		return model.DailyRevenue{}, err
	}

	err = s.store.Update(func(l *storage.RevenueLedger) error {
		if hasShift(l.DailyRevenue, entry.Date, entry.Shift, uuid.Nil) {
			return ErrDuplicateShift
		}
		l.DailyRevenue = append(l.DailyRevenue, entry)
		return nil
	})
	if err != nil {
		return model.DailyRevenue{}, err
	}
	return entry, nil
}

// EditDailyRevenue replaces the fields of an entry, keeping its id. The
// uniqueness check runs when the date or shift changes.
func (s *RevenueService) EditDailyRevenue(id uuid.UUID, in DailyRevenueInput) (model.DailyRevenue, error) {
	var updated model.DailyRevenue
	err := s.store.Update(func(l *storage.RevenueLedger) error {
		i := indexDaily(l.DailyRevenue, id)
		if i < 0 {
			return ErrEntryNotFound
		}
		cur := l.DailyRevenue[i]

		date, clock := in.Date, in.Time
		if date == "" {
			date = cur.Date
		}
		if clock == "" {
			clock = cur.Time
		}
		entry, err := model.NewDailyRevenue(date, clock, in.Revenue, in.Shift)
		if err != nil {
			return err
		}
		entry.ID = cur.ID

		if (entry.Date != cur.Date || entry.Shift != cur.Shift) && hasShift(l.DailyRevenue, entry.Date, entry.Shift, cur.ID) {
			return ErrDuplicateShift
		}
		l.DailyRevenue[i] = entry
		updated = entry
		return nil
	})
	if err != nil {
		return model.DailyRevenue{}, err
	}
	return updated, nil
}

func (s *RevenueService) DeleteDailyRevenue(id uuid.UUID) error {
	return s.store.Update(func(l *storage.RevenueLedger) error {
		i := indexDaily(l.DailyRevenue, id)
		if i < 0 {
			return ErrEntryNotFound
		}
		l.DailyRevenue = append(l.DailyRevenue[:i], l.DailyRevenue[i+1:]...)
		return nil
	})
}

// ListDailyRevenue returns entries newest first.
func (s *RevenueService) ListDailyRevenue() []model.DailyRevenue {
	rows := s.store.Snapshot().DailyRevenue
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date+" "+rows[i].Time > rows[j].Date+" "+rows[j].Time
	})
	return rows
}

// --- Supplier costs ---

func (s *RevenueService) AddSupplierCost(in SupplierCostInput) (model.SupplierCost, error) {
	date, clock := s.stamp(in.Date, in.Time)
	entry, err := model.NewSupplierCost(date, clock, in.Supplier, in.GoodsType, in.Notes, in.Cost, in.PaymentType)
	if err != nil {
		return model.SupplierCost{}, err
	}

	err = s.store.Update(func(l *storage.RevenueLedger) error {
		l.SupplierCosts = append(l.SupplierCosts, entry)
		return nil
	})
	if err != nil {
		return model.SupplierCost{}, err
	}
	return entry, nil
}

// EditSupplierCost replaces the fields of an entry, keeping its id.
func (s *RevenueService) EditSupplierCost(id uuid.UUID, in SupplierCostInput) (model.SupplierCost, error) {
	var updated model.SupplierCost
	err := s.store.Update(func(l *storage.RevenueLedger) error {
		i := indexSupplier(l.SupplierCosts, id)
		if i < 0 {
			return ErrEntryNotFound
		}
		cur := l.SupplierCosts[i]

		date, clock := in.Date, in.Time
		if date == "" {
			date = cur.Date
		}
		if clock == "" {
			clock = cur.Time
		}
		entry, err := model.NewSupplierCost(date, clock, in.Supplier, in.GoodsType, in.Notes, in.Cost, in.PaymentType)
		if err != nil {
			return err
		}
		entry.ID = cur.ID
		l.SupplierCosts[i] = entry
		updated = entry
		return nil
	})
	if err != nil {
		return model.SupplierCost{}, err
	}
	return updated, nil
}

func (s *RevenueService) DeleteSupplierCost(id uuid.UUID) error {
	return s.store.Update(func(l *storage.RevenueLedger) error {
		i := indexSupplier(l.SupplierCosts, id)
		if i < 0 {
			return ErrEntryNotFound
		}
		l.SupplierCosts = append(l.SupplierCosts[:i], l.SupplierCosts[i+1:]...)
		return nil
	})
}

// ListSupplierCosts returns entries newest first.
func (s *RevenueService) ListSupplierCosts() []model.SupplierCost {
	rows := s.store.Snapshot().SupplierCosts
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date+" "+rows[i].Time > rows[j].Date+" "+rows[j].Time
	})
	return rows
}

// --- Reports ---

// MonthlyRow is one month of the monthly report.
type MonthlyRow struct {
	Month   string
	Revenue decimal.Decimal
	Costs   decimal.Decimal
	Profit  decimal.Decimal
}

// MonthlyReport aggregates revenue and costs per YYYY-MM, sorted ascending,
// with a totals row.
type MonthlyReport struct {
	Rows  []MonthlyRow
	Total MonthlyRow
}

// DailyReport lists daily revenue chronologically.
type DailyReport struct {
	Rows  []model.DailyRevenue
	Total decimal.Decimal
}

// SupplierReport lists supplier costs chronologically. Rows with an invalid
// legacy cost are listed but not totalled.
type SupplierReport struct {
	Rows  []model.SupplierCost
	Total decimal.Decimal
}

func (s *RevenueService) MonthlyReport() MonthlyReport {
	snap := s.store.Snapshot()

	months := map[string]*MonthlyRow{}
	row := func(month string) *MonthlyRow {
		r, ok := months[month]
		if !ok {
			r = &MonthlyRow{Month: month, Revenue: decimal.Zero, Costs: decimal.Zero}
			months[month] = r
		}
		return r
	}

	for _, d := range snap.DailyRevenue {
		r := row(d.Month())
		r.Revenue = r.Revenue.Add(d.Revenue)
	}
	for _, c := range snap.SupplierCosts {
		if !c.Cost.Valid {
			log.Printf("WARN: supplier cost %s on %s has invalid cost %s; skipped", c.ID, c.Date, c.RawCost)
			continue
		}
		r := row(c.Month())
		r.Costs = r.Costs.Add(c.Cost.Decimal)
	}

	report := MonthlyReport{
		Rows:  make([]MonthlyRow, 0, len(months)),
		Total: MonthlyRow{Month: TotalLabel, Revenue: decimal.Zero, Costs: decimal.Zero},
	}
	for _, r := range months {
		r.Profit = r.Revenue.Sub(r.Costs)
		report.Rows = append(report.Rows, *r)
		report.Total.Revenue = report.Total.Revenue.Add(r.Revenue)
		report.Total.Costs = report.Total.Costs.Add(r.Costs)
	}
	report.Total.Profit = report.Total.Revenue.Sub(report.Total.Costs)

	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Month < report.Rows[j].Month })
	return report
}

func (s *RevenueService) DailyReport() DailyReport {
	rows := s.store.Snapshot().DailyRevenue
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date+" "+rows[i].Time < rows[j].Date+" "+rows[j].Time
	})

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}
	return DailyReport{Rows: rows, Total: total}
}

func (s *RevenueService) SupplierReport() SupplierReport {
	rows := s.store.Snapshot().SupplierCosts
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date+" "+rows[i].Time < rows[j].Date+" "+rows[j].Time
	})

	total := decimal.Zero
	for _, r := range rows {
		if !r.Cost.Valid {
			log.Printf("WARN: supplier cost %s on %s has invalid cost %s; skipped", r.ID, r.Date, r.RawCost)
			continue
		}
		total = total.Add(r.Cost.Decimal)
	}
	return SupplierReport{Rows: rows, Total: total}
}

func hasShift(rows []model.DailyRevenue, date string, shift model.Shift, except uuid.UUID) bool {
	for _, r := range rows {
		if r.ID != except && r.Date == date && r.Shift == shift {
			return true
		}
	}
	return false
}

func indexDaily(rows []model.DailyRevenue, id uuid.UUID) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func indexSupplier(rows []model.SupplierCost, id uuid.UUID) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
