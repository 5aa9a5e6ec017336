package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ghanu-pos/api/internal/matcher"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/shopspring/decimal"
)

// Errors returned by the menu service.
var (
	ErrBlankName         = errors.New("name is required")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrDuplicateItem     = errors.New("item already exists in category")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrNegativePrice     = model.ErrNegativePrice
)

// MenuStore persists the whole menu.
// Satisfied by *storage.MenuFile; narrow interface for testability.
type MenuStore interface {
	Load() (model.Menu, error)
	Save(m model.Menu) error
}

// MenuService owns the in-memory menu. Every mutation is persisted before
// it becomes visible.
type MenuService struct {
	store   MenuStore
	mu      sync.RWMutex
	menu    model.Menu
	matcher *matcher.Matcher
}

// NewMenuService loads the menu, installing the default one if needed.
func NewMenuService(store MenuStore) (*MenuService, error) {
	m, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	s := &MenuService{store: store}
	s.set(m)
	return s, nil
}

// Menu returns a copy of the current menu.
func (s *MenuService) Menu() model.Menu {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.menu.Clone()
}

// Price returns the current price of item in category.
func (s *MenuService) Price(category, item string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ci := s.menu.CategoryIndex(category)
	if ci < 0 {
		return decimal.Zero, ErrCategoryNotFound
	}
	p, ok := s.menu.Price(category, item)
	if !ok {
		return decimal.Zero, ErrItemNotFound
	}
	return p, nil
}

// Search resolves free text to a menu item.
func (s *MenuService) Search(query string) matcher.MatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matcher.Match(query)
}

func (s *MenuService) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	return s.mutate(func(m *model.Menu) error {
		if m.CategoryIndex(name) >= 0 {
			return ErrDuplicateCategory
		}
		m.Categories = append(m.Categories, model.Category{Name: name, Items: []model.MenuItem{}})
		return nil
	})
}

// RenameCategory keeps the category position and its items.
func (s *MenuService) RenameCategory(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrBlankName
	}
	return s.mutate(func(m *model.Menu) error {
		ci := m.CategoryIndex(oldName)
		if ci < 0 {
			return ErrCategoryNotFound
		}
		if oldName == newName {
			return nil
		}
		if m.CategoryIndex(newName) >= 0 {
			return ErrDuplicateCategory
		}
		m.Categories[ci].Name = newName
		return nil
	})
}

func (s *MenuService) AddItem(category, name string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	item, err := model.NewMenuItem(name, price)
	if err != nil {
		return err
	}
	return s.mutate(func(m *model.Menu) error {
		ci := m.CategoryIndex(category)
		if ci < 0 {
			return ErrCategoryNotFound
		}
		c := &m.Categories[ci]
		if c.ItemIndex(name) >= 0 {
			return ErrDuplicateItem
		}
		c.Items = append(c.Items, item)
		return nil
	})
}

func (s *MenuService) EditItemPrice(category, name string, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	return s.mutate(func(m *model.Menu) error {
		c, ii, err := findItem(m, category, name)
		if err != nil {
			return err
		}
		c.Items[ii].Price = price
		return nil
	})
}

func (s *MenuService) DeleteItem(category, name string) error {
	return s.mutate(func(m *model.Menu) error {
		c, ii, err := findItem(m, category, name)
		if err != nil {
			return err
		}
		c.Items = append(c.Items[:ii], c.Items[ii+1:]...)
		return nil
	})
}

func findItem(m *model.Menu, category, name string) (*model.Category, int, error) {
	ci := m.CategoryIndex(category)
	if ci < 0 {
		return nil, -1, ErrCategoryNotFound
	}
	c := &m.Categories[ci]
	ii := c.ItemIndex(name)
	if ii < 0 {
		return nil, -1, ErrItemNotFound
	}
	return c, ii, nil
}

// mutate applies fn to a copy, saves it, then swaps it in.
func (s *MenuService) mutate(fn func(m *model.Menu) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.menu.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.store.Save(next); err != nil {
		return fmt.Errorf("save menu: %w", err)
	}
	s.set(next)
	return nil
}

// set replaces the menu and rebuilds the matcher. Category names are
// secondary keywords, so "drinks cola" still resolves. Caller holds mu or owns s.
func (s *MenuService) set(m model.Menu) {
	s.menu = m
	var items []matcher.Item
	for _, c := range m.Categories {
		for _, it := range c.Items {
			items = append(items, matcher.Item{Category: c.Name, Name: it.Name, Keywords: []string{c.Name}})
		}
	}
	s.matcher = matcher.New(items)
}
