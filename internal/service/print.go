package service

import (
	"log"

	"github.com/ghanu-pos/api/internal/metrics"
	"github.com/ghanu-pos/api/internal/printer"
)

// PrintResult tells the caller whether a document reached the printer.
// A failed print never fails the request that produced the document.
type PrintResult struct {
	Printed bool   `json:"printed"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PrinterStatus reports the configured printer.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// PrintService sends rendered documents to the configured printer.
type PrintService struct {
	printer     printer.Printer
	printerType string
}

func NewPrintService(p printer.Printer, printerType string) *PrintService {
	if p == nil {
		p = printer.NewNullPrinter()
		printerType = "none"
	}
	return &PrintService{printer: p, printerType: printerType}
}

// Print delivers text as a job of the given kind.
func (s *PrintService) Print(kind, text string) PrintResult {
	path, err := s.printer.Print(printer.Job{Kind: kind, Text: text})
	metrics.RecordPrintJob(kind, err == nil)
	if err != nil {
		log.Printf("ERROR: print %s: %v", kind, err)
		return PrintResult{Error: err.Error()}
	}
	return PrintResult{Printed: true, Path: path}
}

func (s *PrintService) Status() PrinterStatus {
	return PrinterStatus{
		Configured: s.printerType != "none",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}
