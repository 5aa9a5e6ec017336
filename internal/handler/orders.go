package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ghanu-pos/api/internal/cart"
	"github.com/ghanu-pos/api/internal/metrics"
	"github.com/ghanu-pos/api/internal/middleware"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/parser"
	"github.com/ghanu-pos/api/internal/printer"
	"github.com/ghanu-pos/api/internal/receipt"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the order workflow needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, lines []cart.Line, delivery *model.Delivery) (model.Order, error)
	FinishOrder(ctx context.Context, number string) (model.Order, error)
	CancelOrder(ctx context.Context, number, actor string) (model.Order, error)
	RemoveOrder(ctx context.Context, number, actor string) (model.Order, error)
	Queue() []model.Order
	QueuedOrder(number string) (model.Order, error)
}

// Printer sends rendered documents to the configured printer.
// Satisfied by *service.PrintService.
type Printer interface {
	Print(kind, text string) service.PrintResult
}

// OrderHandler handles order placement and the current-orders queue.
type OrderHandler struct {
	svc        OrderServicer
	carts      *cart.Registry
	printer    Printer
	restaurant receipt.Restaurant
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, carts *cart.Registry, p Printer, restaurant receipt.Restaurant) *OrderHandler {
	return &OrderHandler{svc: svc, carts: carts, printer: p, restaurant: restaurant}
}

// RegisterRoutes registers order endpoints available to every signed-in user.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Place)
	r.Get("/orders/queue", h.Queue)
	r.Post("/orders/{number}/finish", h.Finish)
	r.Post("/orders/{number}/cancel", h.Cancel)
	r.Post("/orders/{number}/print", h.Print)
}

// RegisterOwnerRoutes registers queue removal. Mount behind RequireRole(admin)
// and RequireOwnerPassword.
func (h *OrderHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Delete("/orders/{number}", h.Remove)
}

// --- Request / Response types ---

type placeOrderRequest struct {
	Delivery         bool   `json:"delivery"`
	DeliveryLocation string `json:"delivery_location"`
	PhoneNumber      string `json:"phone_number"`
	DeliveryFee      string `json:"delivery_fee"`
}

type orderItemResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

type orderResponse struct {
	OrderNumber      int                 `json:"order_number"`
	Items            []orderItemResponse `json:"items"`
	Total            string              `json:"total"`
	DeliveryLocation *string             `json:"delivery_location"`
	PhoneNumber      *string             `json:"phone_number"`
	DeliveryFee      string              `json:"delivery_fee"`
	DateTime         string              `json:"datetime"`
	Status           string              `json:"status"`
	Cancelled        bool                `json:"cancelled"`
}

type placeOrderResponse struct {
	Order   orderResponse       `json:"order"`
	Receipt string              `json:"receipt"`
	Print   service.PrintResult `json:"print"`
}

type printResponse struct {
	Document string              `json:"document"`
	Print    service.PrintResult `json:"print"`
}

func toOrderResponse(o model.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Total:    it.Total.StringFixed(2),
		}
	}
	return orderResponse{
		OrderNumber:      o.OrderNumber,
		Items:            items,
		Total:            o.Total.StringFixed(2),
		DeliveryLocation: o.DeliveryLocation,
		PhoneNumber:      o.PhoneNumber,
		DeliveryFee:      o.DeliveryFee.StringFixed(2),
		DateTime:         o.DateTime,
		Status:           o.Status.String(),
		Cancelled:        o.Status.IsCancelled(),
	}
}

func toOrderResponses(orders []model.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

// --- Handlers ---

// Place turns the caller's cart into an order, clears the cart and prints
// the receipt. A print failure is reported in the response only.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	delivery, err := deliveryFromRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery_fee: " + err.Error()})
		return
	}

	var order model.Order
	err = h.carts.With(actor(r), func(c *cart.Cart) error {
		o, err := h.svc.PlaceOrder(r.Context(), c.Lines(), delivery)
		if err != nil {
			return err
		}
		c.Clear()
		order = o
		return nil
	})
	metrics.RecordOrderOperation("place", err == nil)
	if err != nil {
		writeOrderError(w, "place order", err)
		return
	}

	text := receipt.Receipt(order, h.restaurant)
	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Order:   toOrderResponse(order),
		Receipt: text,
		Print:   h.printer.Print(printer.KindReceipt, text),
	})
}

func (h *OrderHandler) Queue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toOrderResponses(h.svc.Queue()))
}

// Finish marks a queued order completed and removes it from the queue.
func (h *OrderHandler) Finish(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.FinishOrder(r.Context(), chi.URLParam(r, "number"))
	metrics.RecordOrderOperation("finish", err == nil)
	if err != nil {
		writeOrderError(w, "finish order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Cancel marks a queued order cancelled by the caller. It stays queued.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.CancelOrder(r.Context(), chi.URLParam(r, "number"), actor(r))
	metrics.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		writeOrderError(w, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Print reprints the ticket of a queued order.
func (h *OrderHandler) Print(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.QueuedOrder(chi.URLParam(r, "number"))
	if err != nil {
		writeOrderError(w, "print order", err)
		return
	}
	text := receipt.Ticket(o)
	writeJSON(w, http.StatusOK, printResponse{Document: text, Print: h.printer.Print(printer.KindTicket, text)})
}

// Remove drops an order from the queue without recording anything in the ledger.
func (h *OrderHandler) Remove(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.RemoveOrder(r.Context(), chi.URLParam(r, "number"), actor(r))
	metrics.RecordOrderOperation("remove", err == nil)
	if err != nil {
		writeOrderError(w, "remove order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// --- Helpers ---

// deliveryFromRequest returns nil for pickup. A blank fee means free delivery.
func deliveryFromRequest(req placeOrderRequest) (*model.Delivery, error) {
	if !req.Delivery || req.DeliveryLocation == "" {
		return nil, nil
	}
	fee := decimal.Zero
	if req.DeliveryFee != "" {
		var err error
		if fee, err = parser.ParseAmount(req.DeliveryFee); err != nil {
			return nil, err
		}
	}
	return &model.Delivery{Location: req.DeliveryLocation, Phone: req.PhoneNumber, Fee: fee}, nil
}

func writeOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidDeliveryFee),
		errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrNegativePrice):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderCancelled), errors.Is(err, service.ErrAlreadyCancelled):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNumberExhausted):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// actor is the signed-in username. It keys carts and signs cancellations.
func actor(r *http.Request) string {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}
