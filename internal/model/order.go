package model

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is the timestamp format stored on orders.
const DateTimeLayout = "2006-01-02 15:04:05"

// Order number bounds (inclusive).
const (
	MinOrderNumber = 1000
	MaxOrderNumber = 9999
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidDeliveryFee = errors.New("delivery fee must be >= 0")
)

// OrderItem is one snapshotted cart line. Total is quantity * price.
// Money is written as bare JSON numbers.
type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// NewOrderItem computes the line total.
func NewOrderItem(name string, quantity int, price decimal.Decimal) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}
	if price.IsNegative() {
		return OrderItem{}, ErrNegativePrice
	}
	return OrderItem{
		Name:     name,
		Quantity: quantity,
		Price:    price,
		Total:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

func (it OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string          `json:"name"`
		Quantity int             `json:"quantity"`
		Price    json.RawMessage `json:"price"`
		Total    json.RawMessage `json:"total"`
	}{it.Name, it.Quantity, number(it.Price), number(it.Total)})
}

// Order is the record stored in both orders.json and current_orders.json.
// Money is written as bare JSON numbers; quoted amounts are accepted on read.
type Order struct {
	OrderNumber      int             `json:"order_number"`
	Items            []OrderItem     `json:"items"`
	Total            decimal.Decimal `json:"total"`
	DeliveryLocation *string         `json:"delivery_location"`
	PhoneNumber      *string         `json:"phone_number"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	DateTime         string          `json:"datetime"`
	Status           Status          `json:"status"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OrderNumber      int             `json:"order_number"`
		Items            []OrderItem     `json:"items"`
		Total            json.RawMessage `json:"total"`
		DeliveryLocation *string         `json:"delivery_location"`
		PhoneNumber      *string         `json:"phone_number"`
		DeliveryFee      json.RawMessage `json:"delivery_fee"`
		DateTime         string          `json:"datetime"`
		Status           Status          `json:"status"`
	}{o.OrderNumber, o.Items, number(o.Total), o.DeliveryLocation, o.PhoneNumber, number(o.DeliveryFee), o.DateTime, o.Status})
}

func number(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

// Delivery holds the optional delivery details collected at placement.
type Delivery struct {
	Location string
	Phone    string
	Fee      decimal.Decimal
}

// NewOrder builds an in-progress order. A blank delivery location means
// pickup: fee and phone are dropped.
func NewOrder(number int, items []OrderItem, delivery *Delivery, at time.Time) (Order, error) {
	o := Order{
		OrderNumber: number,
		Items:       items,
		DeliveryFee: decimal.Zero,
		DateTime:    at.Format(DateTimeLayout),
		Status:      InProgress(),
	}

	if delivery != nil && delivery.Location != "" {
		if delivery.Fee.IsNegative() {
			return Order{}, ErrInvalidDeliveryFee
		}
		loc := delivery.Location
		o.DeliveryLocation = &loc
		if delivery.Phone != "" {
			phone := delivery.Phone
			o.PhoneNumber = &phone
		}
		o.DeliveryFee = delivery.Fee
	}

	o.Total = o.Subtotal().Add(o.DeliveryFee)
	return o, nil
}

// Subtotal is the sum of line totals, excluding the delivery fee.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// IsDelivery reports whether the order carries a delivery address.
func (o Order) IsDelivery() bool {
	return o.DeliveryLocation != nil && *o.DeliveryLocation != ""
}

// NumberString is the key used for queue lookups and report searches.
func (o Order) NumberString() string {
	return strconv.Itoa(o.OrderNumber)
}

// WithStatus returns a copy of the order carrying a new status.
func (o Order) WithStatus(s Status) Order {
	o.Status = s
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
