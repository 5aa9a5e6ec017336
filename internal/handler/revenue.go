package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/export"
	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/parser"
	"github.com/ghanu-pos/api/internal/printer"
	"github.com/ghanu-pos/api/internal/receipt"
	"github.com/ghanu-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RevenueServicer defines the revenue ledger operations needed by revenue handlers.
// Satisfied by *service.RevenueService; narrow interface for testability.
type RevenueServicer interface {
	AddDailyRevenue(in service.DailyRevenueInput) (model.DailyRevenue, error)
	EditDailyRevenue(id uuid.UUID, in service.DailyRevenueInput) (model.DailyRevenue, error)
	DeleteDailyRevenue(id uuid.UUID) error
	ListDailyRevenue() []model.DailyRevenue

	AddSupplierCost(in service.SupplierCostInput) (model.SupplierCost, error)
	EditSupplierCost(id uuid.UUID, in service.SupplierCostInput) (model.SupplierCost, error)
	DeleteSupplierCost(id uuid.UUID) error
	ListSupplierCosts() []model.SupplierCost

	MonthlyReport() service.MonthlyReport
	DailyReport() service.DailyReport
	SupplierReport() service.SupplierReport
}

var errInvalidTime = errors.New("time must be HH:MM:SS")

// RevenueHandler handles manual revenue and supplier cost entries and their reports.
type RevenueHandler struct {
	svc     RevenueServicer
	printer Printer
	now     func() time.Time
}

// NewRevenueHandler creates a new RevenueHandler.
func NewRevenueHandler(svc RevenueServicer, p Printer) *RevenueHandler {
	return &RevenueHandler{svc: svc, printer: p, now: time.Now}
}

// RegisterRoutes registers revenue endpoints. Expected to be mounted at
// /revenue behind RequireRole(admin).
func (h *RevenueHandler) RegisterRoutes(r chi.Router) {
	r.Get("/daily", h.ListDaily)
	r.Post("/daily", h.AddDaily)
	r.Put("/daily/{id}", h.EditDaily)
	r.Delete("/daily/{id}", h.DeleteDaily)

	r.Get("/supplier-costs", h.ListSupplierCosts)
	r.Post("/supplier-costs", h.AddSupplierCost)
	r.Put("/supplier-costs/{id}", h.EditSupplierCost)
	r.Delete("/supplier-costs/{id}", h.DeleteSupplierCost)

	r.Get("/reports/{kind}", h.Report)
	r.Post("/reports/{kind}/print", h.PrintReport)
	r.Get("/reports/{kind}/export", h.ExportReport)
}

// --- Request / Response types ---

// Amounts are strings so cashiers can send "1,500", "١٥٠٠" or "1.5k".
type dailyRevenueRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Revenue string `json:"revenue"`
	Shift   string `json:"shift"`
}

type supplierCostRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Supplier    string `json:"supplier"`
	GoodsType   string `json:"goods_type"`
	Notes       string `json:"notes"`
	Cost        string `json:"cost"`
	PaymentType string `json:"payment_type"`
}

type dailyRevenueResponse struct {
	ID      uuid.UUID `json:"id"`
	Date    string    `json:"date"`
	Time    string    `json:"time"`
	Revenue string    `json:"revenue"`
	Shift   string    `json:"shift"`
}

type supplierCostResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Supplier    string    `json:"supplier"`
	GoodsType   string    `json:"goods_type"`
	Notes       string    `json:"notes"`
	Cost        string    `json:"cost"`
	PaymentType string    `json:"payment_type"`
}

func toDailyRevenueResponse(d model.DailyRevenue) dailyRevenueResponse {
	return dailyRevenueResponse{
		ID:      d.ID,
		Date:    d.Date,
		Time:    d.Time,
		Revenue: d.Revenue.StringFixed(2),
		Shift:   string(d.Shift),
	}
}

func toSupplierCostResponse(c model.SupplierCost) supplierCostResponse {
	cost := receipt.InvalidCost
	if c.Cost.Valid {
		cost = c.Cost.Decimal.StringFixed(2)
	}
	return supplierCostResponse{
		ID:          c.ID,
		Date:        c.Date,
		Time:        c.Time,
		Supplier:    c.Supplier,
		GoodsType:   c.GoodsType,
		Notes:       c.Notes,
		Cost:        cost,
		PaymentType: string(c.PaymentType),
	}
}

// --- Daily revenue ---

func (h *RevenueHandler) ListDaily(w http.ResponseWriter, r *http.Request) {
	rows := h.svc.ListDailyRevenue()
	out := make([]dailyRevenueResponse, len(rows))
	for i, d := range rows {
		out[i] = toDailyRevenueResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RevenueHandler) AddDaily(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeDaily(w, r)
	if !ok {
		return
	}
	d, err := h.svc.AddDailyRevenue(in)
	if err != nil {
		writeRevenueError(w, "add daily revenue", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDailyRevenueResponse(d))
}

// EditDaily replaces an entry. Blank date/time keep the stored values.
func (h *RevenueHandler) EditDaily(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEntryID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeDaily(w, r)
	if !ok {
		return
	}
	d, err := h.svc.EditDailyRevenue(id, in)
	if err != nil {
		writeRevenueError(w, "edit daily revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, toDailyRevenueResponse(d))
}

func (h *RevenueHandler) DeleteDaily(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEntryID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteDailyRevenue(id); err != nil {
		writeRevenueError(w, "delete daily revenue", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RevenueHandler) decodeDaily(w http.ResponseWriter, r *http.Request) (service.DailyRevenueInput, bool) {
	var req dailyRevenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return service.DailyRevenueInput{}, false
	}

	in := service.DailyRevenueInput{Shift: parseShift(req.Shift)}
	var err error
	if in.Revenue, err = parser.ParseAmount(req.Revenue); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid revenue: " + err.Error()})
		return in, false
	}
	if in.Date, in.Time, err = h.parseStamp(req.Date, req.Time); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return in, false
	}
	return in, true
}

// --- Supplier costs ---

func (h *RevenueHandler) ListSupplierCosts(w http.ResponseWriter, r *http.Request) {
	rows := h.svc.ListSupplierCosts()
	out := make([]supplierCostResponse, len(rows))
	for i, c := range rows {
		out[i] = toSupplierCostResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RevenueHandler) AddSupplierCost(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeSupplierCost(w, r)
	if !ok {
		return
	}
	c, err := h.svc.AddSupplierCost(in)
	if err != nil {
		writeRevenueError(w, "add supplier cost", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSupplierCostResponse(c))
}

func (h *RevenueHandler) EditSupplierCost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEntryID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeSupplierCost(w, r)
	if !ok {
		return
	}
	c, err := h.svc.EditSupplierCost(id, in)
	if err != nil {
		writeRevenueError(w, "edit supplier cost", err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierCostResponse(c))
}

func (h *RevenueHandler) DeleteSupplierCost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEntryID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSupplierCost(id); err != nil {
		writeRevenueError(w, "delete supplier cost", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RevenueHandler) decodeSupplierCost(w http.ResponseWriter, r *http.Request) (service.SupplierCostInput, bool) {
	var req supplierCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return service.SupplierCostInput{}, false
	}

	in := service.SupplierCostInput{
		Supplier:    strings.TrimSpace(req.Supplier),
		GoodsType:   strings.TrimSpace(req.GoodsType),
		Notes:       strings.TrimSpace(req.Notes),
		PaymentType: parsePaymentType(req.PaymentType),
	}
	var err error
	if in.Cost, err = parser.ParseAmount(req.Cost); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cost: " + err.Error()})
		return in, false
	}
	if in.Date, in.Time, err = h.parseStamp(req.Date, req.Time); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return in, false
	}
	return in, true
}

// --- Reports ---

// Report returns the monthly, daily or supplier report as a table.
func (h *RevenueHandler) Report(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *RevenueHandler) PrintReport(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}
	text := t.Text()
	writeJSON(w, http.StatusOK, printResponse{Document: text, Print: h.printer.Print(printer.KindRevenue, text)})
}

// ExportReport downloads the report as an xlsx workbook.
func (h *RevenueHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, t); err != nil {
		log.Printf("ERROR: export %s report: %v", t.Kind, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(t.Kind))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("ERROR: write %s export: %v", t.Kind, err)
	}
}

func (h *RevenueHandler) table(w http.ResponseWriter, r *http.Request) (receipt.Table, bool) {
	switch kind := chi.URLParam(r, "kind"); kind {
	case enum.ReportMonthly:
		return receipt.MonthlyTable(h.svc.MonthlyReport()), true
	case enum.ReportDaily:
		return receipt.DailyTable(h.svc.DailyReport()), true
	case enum.ReportSupplier:
		return receipt.SupplierTable(h.svc.SupplierReport()), true
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown report " + kind})
		return receipt.Table{}, false
	}
}

// --- Helpers ---

// parseStamp normalises an optional date ("2024-01-05", "5 يناير") and
// time. Blank values are passed through for the service to default.
func (h *RevenueHandler) parseStamp(date, clock string) (string, string, error) {
	if date != "" {
		d, err := parser.ParseDate(date, h.now())
		if err != nil {
			return "", "", err
		}
		date = d
	}
	if clock != "" {
		clock = parser.NormalizeDigits(strings.TrimSpace(clock))
		if _, err := time.Parse(model.TimeLayout, clock); err != nil {
			return "", "", errInvalidTime
		}
	}
	return date, clock, nil
}

// parseShift accepts the stored Arabic label or "day"/"night".
func parseShift(s string) model.Shift {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return model.ShiftDay
	case "night":
		return model.ShiftNight
	}
	return model.Shift(strings.TrimSpace(s))
}

// parsePaymentType accepts the stored Arabic label or "cash"/"credit".
func parsePaymentType(s string) model.PaymentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return model.PaymentCash
	case "credit":
		return model.PaymentCredit
	}
	return model.PaymentType(strings.TrimSpace(s))
}

func parseEntryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeRevenueError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrNegativeAmount),
		errors.Is(err, model.ErrInvalidShift),
		errors.Is(err, model.ErrInvalidPaymentType),
		errors.Is(err, model.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateShift):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
