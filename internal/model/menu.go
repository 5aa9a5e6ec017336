package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNegativePrice is returned when a menu price is below zero.
var ErrNegativePrice = errors.New("price must be >= 0")

// MenuItem is a priced entry inside a category.
type MenuItem struct {
	Name  string
	Price decimal.Decimal
}

// Category groups menu items. Item names are unique within a category.
type Category struct {
	Name  string
	Items []MenuItem
}

// Menu is the ordered category -> item -> price mapping persisted in menu.json.
// Category and item order follow the file (and insertion order for new entries).
type Menu struct {
	Categories []Category
}

// NewMenuItem validates the price before building the item.
func NewMenuItem(name string, price decimal.Decimal) (MenuItem, error) {
	if price.IsNegative() {
		return MenuItem{}, ErrNegativePrice
	}
	return MenuItem{Name: name, Price: price}, nil
}

// DefaultMenu is installed when no menu file exists yet.
func DefaultMenu() Menu {
	return Menu{Categories: []Category{
		{Name: "Main Dishes", Items: []MenuItem{
			{Name: "Burger", Price: decimal.NewFromInt(50)},
			{Name: "Pizza", Price: decimal.NewFromInt(60)},
		}},
		{Name: "Sides", Items: []MenuItem{
			{Name: "Fries", Price: decimal.NewFromInt(20)},
			{Name: "Salad", Price: decimal.NewFromInt(15)},
		}},
		{Name: "Drinks", Items: []MenuItem{
			{Name: "Cola", Price: decimal.NewFromInt(10)},
			{Name: "Water", Price: decimal.NewFromInt(5)},
		}},
	}}
}

// CategoryIndex returns the position of the named category or -1.
func (m *Menu) CategoryIndex(name string) int {
	for i, c := range m.Categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ItemIndex returns the position of the named item or -1.
func (c *Category) ItemIndex(name string) int {
	for i, it := range c.Items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// Price looks up the current price of an item in a category.
func (m *Menu) Price(category, item string) (decimal.Decimal, bool) {
	ci := m.CategoryIndex(category)
	if ci < 0 {
		return decimal.Zero, false
	}
	c := &m.Categories[ci]
	ii := c.ItemIndex(item)
	if ii < 0 {
		return decimal.Zero, false
	}
	return c.Items[ii].Price, true
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (m Menu) Clone() Menu {
	out := Menu{Categories: make([]Category, len(m.Categories))}
	for i, c := range m.Categories {
		items := make([]MenuItem, len(c.Items))
		copy(items, c.Items)
		out.Categories[i] = Category{Name: c.Name, Items: items}
	}
	return out
}

// MarshalJSON writes {"category": {"item": price}} keeping category and item order.
func (m Menu) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":{")
		for j, it := range c.Items {
			if j > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(it.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			buf.WriteString(it.Price.String())
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the nested object while preserving key order.
func (m *Menu) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	categories := []Category{}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}

		cat := Category{Name: name, Items: []MenuItem{}}
		for dec.More() {
			itemName, err := readKey(dec)
			if err != nil {
				return err
			}
			var price decimal.Decimal
			if err := dec.Decode(&price); err != nil {
				return fmt.Errorf("item %q: %w", itemName, err)
			}
			if idx := cat.ItemIndex(itemName); idx >= 0 {
				cat.Items[idx].Price = price
				continue
			}
			cat.Items = append(cat.Items, MenuItem{Name: itemName, Price: price})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}

		if idx := indexOfCategory(categories, name); idx >= 0 {
			categories[idx] = cat
			continue
		}
		categories = append(categories, cat)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	m.Categories = categories
	return nil
}

func indexOfCategory(cats []Category, name string) int {
	for i, c := range cats {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
