package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ghanu-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var (
	ErrNegativeAmount     = errors.New("amount must be >= 0")
	ErrInvalidShift       = errors.New("invalid shift")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
)

// Shift is one of the two daily revenue recording windows.
type Shift string

const (
	ShiftDay   Shift = enum.ShiftDay
	ShiftNight Shift = enum.ShiftNight
)

func (s Shift) Valid() bool { return s == ShiftDay || s == ShiftNight }

// PaymentType is how a supplier was paid.
type PaymentType string

const (
	PaymentCash   PaymentType = enum.PaymentCash
	PaymentCredit PaymentType = enum.PaymentCredit
)

func (p PaymentType) Valid() bool { return p == PaymentCash || p == PaymentCredit }

// DailyRevenue is a manually entered shift total.
// Stored as [date, time, revenue, shift, id].
type DailyRevenue struct {
	ID      uuid.UUID
	Date    string
	Time    string
	Revenue decimal.Decimal
	Shift   Shift
}

// NewDailyRevenue validates fields and assigns a fresh id.
func NewDailyRevenue(date, clock string, revenue decimal.Decimal, shift Shift) (DailyRevenue, error) {
	if err := validateDate(date); err != nil {
		return DailyRevenue{}, err
	}
	if revenue.IsNegative() {
		return DailyRevenue{}, ErrNegativeAmount
	}
	if !shift.Valid() {
		return DailyRevenue{}, ErrInvalidShift
	}
	return DailyRevenue{ID: uuid.New(), Date: date, Time: clock, Revenue: revenue, Shift: shift}, nil
}

// Month returns the YYYY-MM bucket of the entry.
func (d DailyRevenue) Month() string { return monthOf(d.Date) }

func (d DailyRevenue) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Date, d.Time, json.RawMessage(d.Revenue.String()), string(d.Shift), d.ID.String()})
}

func (d *DailyRevenue) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 4 {
		return fmt.Errorf("daily revenue row: want at least 4 fields, got %d", len(raw))
	}

	var out DailyRevenue
	var shift string
	if err := unmarshalAll(
		field{raw[0], &out.Date},
		field{raw[1], &out.Time},
		field{raw[2], &out.Revenue},
		field{raw[3], &shift},
	); err != nil {
		return fmt.Errorf("daily revenue row: %w", err)
	}
	out.Shift = Shift(shift)

	id, err := optionalID(raw, 4)
	if err != nil {
		return fmt.Errorf("daily revenue row: %w", err)
	}
	out.ID = id

	*d = out
	return nil
}

// SupplierCost is a goods purchase from a supplier.
// Stored as [date, time, supplier, goods_type, notes, cost, payment_type, id].
//
// Cost.Valid is false for legacy rows whose cost is not numeric; RawCost
// keeps the original value so it survives a rewrite.
type SupplierCost struct {
	ID          uuid.UUID
	Date        string
	Time        string
	Supplier    string
	GoodsType   string
	Notes       string
	Cost        decimal.NullDecimal
	RawCost     json.RawMessage
	PaymentType PaymentType
}

// NewSupplierCost validates fields and assigns a fresh id.
func NewSupplierCost(date, clock, supplier, goodsType, notes string, cost decimal.Decimal, payment PaymentType) (SupplierCost, error) {
	if err := validateDate(date); err != nil {
		return SupplierCost{}, err
	}
	if cost.IsNegative() {
		return SupplierCost{}, ErrNegativeAmount
	}
	if !payment.Valid() {
		return SupplierCost{}, ErrInvalidPaymentType
	}
	return SupplierCost{
		ID:          uuid.New(),
		Date:        date,
		Time:        clock,
		Supplier:    supplier,
		GoodsType:   goodsType,
		Notes:       notes,
		Cost:        decimal.NewNullDecimal(cost),
		PaymentType: payment,
	}, nil
}

// Month returns the YYYY-MM bucket of the entry.
func (s SupplierCost) Month() string { return monthOf(s.Date) }

func (s SupplierCost) MarshalJSON() ([]byte, error) {
	var cost json.RawMessage
	switch {
	case s.Cost.Valid:
		cost = json.RawMessage(s.Cost.Decimal.String())
	case len(s.RawCost) > 0:
		cost = s.RawCost
	default:
		cost = json.RawMessage("null")
	}
	return json.Marshal([]any{s.Date, s.Time, s.Supplier, s.GoodsType, s.Notes, cost, string(s.PaymentType), s.ID.String()})
}

func (s *SupplierCost) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 7 {
		return fmt.Errorf("supplier cost row: want at least 7 fields, got %d", len(raw))
	}

	var out SupplierCost
	var payment string
	if err := unmarshalAll(
		field{raw[0], &out.Date},
		field{raw[1], &out.Time},
		field{raw[2], &out.Supplier},
		field{raw[3], &out.GoodsType},
		field{raw[4], &out.Notes},
		field{raw[6], &payment},
	); err != nil {
		return fmt.Errorf("supplier cost row: %w", err)
	}
	out.PaymentType = PaymentType(payment)

	var cost decimal.Decimal
	if err := json.Unmarshal(raw[5], &cost); err == nil {
		out.Cost = decimal.NewNullDecimal(cost)
	} else {
		out.RawCost = append(json.RawMessage(nil), raw[5]...)
	}

	id, err := optionalID(raw, 7)
	if err != nil {
		return fmt.Errorf("supplier cost row: %w", err)
	}
	out.ID = id

	*s = out
	return nil
}

// --- Helpers ---

type field struct {
	raw json.RawMessage
	dst any
}

func unmarshalAll(fields ...field) error {
	for i, f := range fields {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}
	return nil
}

// optionalID reads the trailing id column. Rows written before ids existed
// get uuid.Nil and are assigned an id by the store on load.
func optionalID(raw []json.RawMessage, idx int) (uuid.UUID, error) {
	if len(raw) <= idx {
		return uuid.Nil, nil
	}
	var s string
	if err := json.Unmarshal(raw[idx], &s); err != nil {
		return uuid.Nil, fmt.Errorf("id: %w", err)
	}
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
