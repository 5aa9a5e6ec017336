package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ghanu-pos/api/internal/cart"
	"github.com/ghanu-pos/api/internal/matcher"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// MenuPricer defines the menu lookups needed to fill a cart.
// Satisfied by *service.MenuService; narrow interface for testability.
type MenuPricer interface {
	Price(category, item string) (decimal.Decimal, error)
	Search(query string) matcher.MatchResult
}

// CartHandler manages the caller's in-memory cart, keyed by username.
type CartHandler struct {
	carts *cart.Registry
	menu  MenuPricer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *cart.Registry, menu MenuPricer) *CartHandler {
	return &CartHandler{carts: carts, menu: menu}
}

// RegisterRoutes registers cart endpoints. Requires Authenticate.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Post("/cart/items/{item}/increase", h.Increase)
	r.Post("/cart/items/{item}/decrease", h.Decrease)
	r.Delete("/cart", h.Clear)
}

// --- Request / Response types ---

// addItemRequest selects an item either by category+item or by free-text query.
type addItemRequest struct {
	Category string `json:"category"`
	Item     string `json:"item"`
	Query    string `json:"query"`
	Quantity int    `json:"quantity"`
}

type cartLineResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total string             `json:"total"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	lines := c.Lines()
	resp := cartResponse{Lines: make([]cartLineResponse, len(lines)), Total: c.Total().StringFixed(2)}
	for i, l := range lines {
		resp.Lines[i] = cartLineResponse{
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.Price.StringFixed(2),
			Total:    l.Total().StringFixed(2),
		}
	}
	return resp
}

// --- Handlers ---

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	var resp cartResponse
	h.carts.With(actor(r), func(c *cart.Cart) error {
		resp = toCartResponse(c)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

// AddItem adds units of a menu item at its current price.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be > 0"})
		return
	}

	category, item, qty := req.Category, req.Item, req.Quantity
	if req.Query != "" {
		res := h.menu.Search(req.Query)
		switch res.Status {
		case matcher.Ambiguous:
			names := make([]string, len(res.Candidates))
			for i, c := range res.Candidates {
				names[i] = c.Name
			}
			writeJSON(w, http.StatusConflict, map[string]interface{}{"error": "query matches several items", "candidates": names})
			return
		case matcher.Unmatched:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no menu item matches query"})
			return
		}
		category, item = res.Item.Category, res.Item.Name
		if qty == 0 {
			qty = res.Quantity
		}
	}
	if category == "" || item == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category and item, or query, are required"})
		return
	}
	if qty == 0 {
		qty = 1
	}
	if qty > cart.MaxQuantity {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": cart.ErrQuantityTooLarge.Error()})
		return
	}

	price, err := h.menu.Price(category, item)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) || errors.Is(err, service.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: price %s/%s: %v", category, item, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var resp cartResponse
	err = h.carts.With(actor(r), func(c *cart.Cart) error {
		if err := c.AddN(item, price, qty); err != nil {
			return err
		}
		resp = toCartResponse(c)
		return nil
	})
	if errors.Is(err, cart.ErrQuantityTooLarge) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Increase(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, (*cart.Cart).Increase)
}

// Decrease removes one unit; the line disappears at zero.
func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, (*cart.Cart).Decrease)
}

func (h *CartHandler) adjust(w http.ResponseWriter, r *http.Request, op func(*cart.Cart, string) error) {
	item := pathParam(r, "item")

	var resp cartResponse
	err := h.carts.With(actor(r), func(c *cart.Cart) error {
		if err := op(c, item); err != nil {
			return err
		}
		resp = toCartResponse(c)
		return nil
	})
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, cart.ErrQuantityTooLarge):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var resp cartResponse
	h.carts.With(actor(r), func(c *cart.Cart) error {
		c.Clear()
		resp = toCartResponse(c)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}
