package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/ghanu-pos/api/internal/matcher"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/parser"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// MenuManager defines the menu operations needed by menu handlers.
// Satisfied by *service.MenuService; narrow interface for testability.
type MenuManager interface {
	Menu() model.Menu
	Price(category, item string) (decimal.Decimal, error)
	Search(query string) matcher.MatchResult
	AddCategory(name string) error
	RenameCategory(oldName, newName string) error
	AddItem(category, name string, price decimal.Decimal) error
	EditItemPrice(category, name string, price decimal.Decimal) error
	DeleteItem(category, name string) error
}

// MenuHandler handles menu browsing and editing endpoints.
type MenuHandler struct {
	svc MenuManager
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuManager) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers read-only menu endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
	r.Get("/menu/search", h.Search)
}

// RegisterAdminRoutes registers menu editing endpoints. Mount behind RequireRole(admin).
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/menu/categories", h.AddCategory)
	r.Put("/menu/categories/{category}", h.RenameCategory)
	r.Post("/menu/categories/{category}/items", h.AddItem)
	r.Put("/menu/categories/{category}/items/{item}", h.EditItem)
	r.Delete("/menu/categories/{category}/items/{item}", h.DeleteItem)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name string `json:"name"`
}

type itemRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type menuItemResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type categoryResponse struct {
	Name  string             `json:"name"`
	Items []menuItemResponse `json:"items"`
}

type searchItemResponse struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Price    string `json:"price,omitempty"`
}

type searchResponse struct {
	Status     string               `json:"status"`
	Quantity   int                  `json:"quantity"`
	Item       *searchItemResponse  `json:"item,omitempty"`
	Candidates []searchItemResponse `json:"candidates,omitempty"`
}

func toMenuResponse(m model.Menu) []categoryResponse {
	out := make([]categoryResponse, len(m.Categories))
	for i, c := range m.Categories {
		items := make([]menuItemResponse, len(c.Items))
		for j, it := range c.Items {
			items[j] = menuItemResponse{Name: it.Name, Price: it.Price.StringFixed(2)}
		}
		out[i] = categoryResponse{Name: c.Name, Items: items}
	}
	return out
}

// --- Handlers ---

// Get returns the menu with categories and items in display order.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toMenuResponse(h.svc.Menu()))
}

// Search resolves ?q= free text ("2 cola") to a menu item.
func (h *MenuHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	res := h.svc.Search(q)
	resp := searchResponse{Status: res.Status.String(), Quantity: res.Quantity}
	if res.Item != nil {
		item := searchItemResponse{Category: res.Item.Category, Name: res.Item.Name}
		if p, err := h.svc.Price(item.Category, item.Name); err == nil {
			item.Price = p.StringFixed(2)
		}
		resp.Item = &item
	}
	for _, c := range res.Candidates {
		resp.Candidates = append(resp.Candidates, searchItemResponse{Category: c.Category, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.svc.AddCategory(req.Name); err != nil {
		writeMenuError(w, "add category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuResponse(h.svc.Menu()))
}

func (h *MenuHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.svc.RenameCategory(pathParam(r, "category"), req.Name); err != nil {
		writeMenuError(w, "rename category", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(h.svc.Menu()))
}

func (h *MenuHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	price, err := parser.ParseAmount(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price: " + err.Error()})
		return
	}
	if err := h.svc.AddItem(pathParam(r, "category"), req.Name, price); err != nil {
		writeMenuError(w, "add item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuResponse(h.svc.Menu()))
}

// EditItem changes an item's price. Carts keep the price they were filled at.
func (h *MenuHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	price, err := parser.ParseAmount(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price: " + err.Error()})
		return
	}
	if err := h.svc.EditItemPrice(pathParam(r, "category"), pathParam(r, "item"), price); err != nil {
		writeMenuError(w, "edit item", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(h.svc.Menu()))
}

func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(pathParam(r, "category"), pathParam(r, "item")); err != nil {
		writeMenuError(w, "delete item", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(h.svc.Menu()))
}

// --- Helpers ---

func writeMenuError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrBlankName), errors.Is(err, service.ErrNegativePrice):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound), errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateCategory), errors.Is(err, service.ErrDuplicateItem):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// pathParam returns a URL parameter with any percent-encoding removed.
// Menu names are usually Arabic and arrive escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}
