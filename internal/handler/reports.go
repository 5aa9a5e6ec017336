package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/printer"
	"github.com/ghanu-pos/api/internal/receipt"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// ReportServicer defines the ledger queries needed by report handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type ReportServicer interface {
	Reports(search string) ([]model.Order, error)
	ReportOrder(number string) (model.Order, error)
}

// ReportsHandler serves the completed/cancelled order history.
type ReportsHandler struct {
	svc            ReportServicer
	printer        Printer
	restaurantName string
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc ReportServicer, p Printer, restaurantName string) *ReportsHandler {
	return &ReportsHandler{svc: svc, printer: p, restaurantName: restaurantName}
}

// RegisterRoutes registers report endpoints. Mount behind RequireRole(admin).
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/orders", h.List)
	r.Post("/reports/orders/print", h.PrintAll)
	r.Post("/reports/orders/{number}/print", h.PrintOne)
}

// List returns ledger records with a final status. ?search= keeps only the
// records whose order number equals it.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Reports(r.URL.Query().Get("search"))
	if err != nil {
		log.Printf("ERROR: list reports: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// PrintOne prints the summary of the latest final record for an order number.
func (h *ReportsHandler) PrintOne(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.ReportOrder(chi.URLParam(r, "number"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: report order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	text := receipt.OrderSummary(o, h.restaurantName)
	writeJSON(w, http.StatusOK, printResponse{Document: text, Print: h.printer.Print(printer.KindOrderSummary, text)})
}

// PrintAll prints every report matching ?search= in one document.
func (h *ReportsHandler) PrintAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Reports(r.URL.Query().Get("search"))
	if err != nil {
		log.Printf("ERROR: list reports: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if len(orders) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no reports to print"})
		return
	}

	text := receipt.AllReports(orders)
	writeJSON(w, http.StatusOK, printResponse{Document: text, Print: h.printer.Print(printer.KindAllReports, text)})
}
