// Package cart holds the in-memory order being built by each cashier.
package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the most units a single line may hold.
const MaxQuantity = 999

var (
	ErrLineNotFound     = errors.New("item not in cart")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrQuantityTooLarge = fmt.Errorf("quantity exceeds %d per item", MaxQuantity)
)

// Line is one cart entry. Price is the unit price at the time it was added.
type Line struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Total is quantity * unit price.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in the order they were first added. Not safe for
// concurrent use; Registry guards access per user.
type Cart struct {
	lines []Line
}

// Add puts one unit of name in the cart.
func (c *Cart) Add(name string, price decimal.Decimal) error {
	return c.AddN(name, price, 1)
}

// AddN puts n units of name in the cart. An existing line keeps its price
// snapshot and gains n units. The cart is unchanged when the line would
// exceed MaxQuantity.
func (c *Cart) AddN(name string, price decimal.Decimal, n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	i := c.index(name)
	if i < 0 {
		if n > MaxQuantity {
			return ErrQuantityTooLarge
		}
		c.lines = append(c.lines, Line{Name: name, Quantity: n, Price: price})
		return nil
	}
	if n > MaxQuantity-c.lines[i].Quantity {
		return ErrQuantityTooLarge
	}
	c.lines[i].Quantity += n
	return nil
}

// Increase adds one unit to an existing line.
func (c *Cart) Increase(name string) error {
	i := c.index(name)
	if i < 0 {
		return ErrLineNotFound
	}
	if c.lines[i].Quantity >= MaxQuantity {
		return ErrQuantityTooLarge
	}
	c.lines[i].Quantity++
	return nil
}

// Decrease removes one unit; the line is dropped when it reaches zero.
func (c *Cart) Decrease(name string) error {
	i := c.index(name)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines[i].Quantity--
	if c.lines[i].Quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	return nil
}

// Total is the sum of line totals.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) index(name string) int {
	for i, l := range c.lines {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// Registry maps usernames to their carts. Carts live only in memory.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// With runs fn against the user's cart while holding the registry lock.
func (r *Registry) With(user string, fn func(c *Cart) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[user]
	if !ok {
		c = &Cart{}
		r.carts[user] = c
	}
	return fn(c)
}
