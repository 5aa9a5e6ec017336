package handler

import (
	"net/http"

	"github.com/ghanu-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// PrinterStatuser reports the configured printer.
// Satisfied by *service.PrintService.
type PrinterStatuser interface {
	Status() service.PrinterStatus
}

type PrinterHandler struct {
	printer PrinterStatuser
}

func NewPrinterHandler(p PrinterStatuser) *PrinterHandler {
	return &PrinterHandler{printer: p}
}

func (h *PrinterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/printer/status", h.Status)
}

func (h *PrinterHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.printer.Status())
}
