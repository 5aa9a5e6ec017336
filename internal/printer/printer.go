// Package printer sends rendered documents to a receipt printer or to the
// reports directory.
package printer

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Job kinds. The kind also names the file written by the file printer.
const (
	KindReceipt      = "receipt"
	KindTicket       = "order_ticket"
	KindOrderSummary = "order_summary"
	KindAllReports   = "all_reports"
	KindRevenue      = "revenue_report"
)

var ErrUnknownType = errors.New("printer: unknown printer type")

// Job is one document to print.
type Job struct {
	Kind string
	Text string
}

// Printer is the interface for sending documents to a printer.
type Printer interface {
	// Print delivers the job. For file printers the returned path is the
	// file written; other printers return "".
	Print(job Job) (string, error)
	// Close releases the printer connection/handle.
	Close() error
	// IsConnected returns true if the printer is reachable.
	IsConnected() bool
}

// --- USB Printer (writes to device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path  string
	width int
}

func NewUSBPrinter(devicePath string, width int) Printer {
	return &usbPrinter{path: devicePath, width: width}
}

func (p *usbPrinter) Print(job Job) (string, error) {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return "", fmt.Errorf("printer: open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(Encode(job, p.width)); err != nil {
		return "", fmt.Errorf("printer: write to USB device %s: %w", p.path, err)
	}
	return "", nil
}

func (p *usbPrinter) Close() error {
	return nil // opened per job
}

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (raw TCP, e.g. 192.168.1.100:9100) ---

type networkPrinter struct {
	address string
	width   int
	timeout time.Duration
}

// NewNetworkPrinter creates a printer reached over TCP. address includes
// the port.
func NewNetworkPrinter(address string, width int) Printer {
	return &networkPrinter{address: address, width: width, timeout: 5 * time.Second}
}

func (p *networkPrinter) Print(job Job) (string, error) {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return "", fmt.Errorf("printer: connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

	if _, err := conn.Write(Encode(job, p.width)); err != nil {
		return "", fmt.Errorf("printer: write to %s: %w", p.address, err)
	}
	return "", nil
}

func (p *networkPrinter) Close() error {
	return nil // dialled per job
}

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- File Printer (plain text into a directory) ---

type filePrinter struct {
	dir string
	now func() time.Time

	mu sync.Mutex
}

// NewFilePrinter writes each job as <kind>_<YYYYmmdd_HHMMSS>.txt under dir.
func NewFilePrinter(dir string) Printer {
	return &filePrinter{dir: dir, now: time.Now}
}

func (p *filePrinter) Print(job Job) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("printer: create %s: %w", p.dir, err)
	}

	base := fmt.Sprintf("%s_%s", job.Kind, p.now().Format("20060102_150405"))
	for i := 0; ; i++ {
		name := base + ".txt"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.txt", base, i)
		}
		path := filepath.Join(p.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("printer: create %s: %w", path, err)
		}
		if _, err := f.WriteString(job.Text); err != nil {
			f.Close()
			return "", fmt.Errorf("printer: write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("printer: close %s: %w", path, err)
		}
		return path, nil
	}
}

func (p *filePrinter) Close() error {
	return nil
}

func (p *filePrinter) IsConnected() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// --- Null Printer (no-op, used when no printer is configured) ---

type nullPrinter struct{}

func NewNullPrinter() Printer {
	return &nullPrinter{}
}

func (p *nullPrinter) Print(Job) (string, error) {
	return "", nil
}

func (p *nullPrinter) Close() error {
	return nil
}

func (p *nullPrinter) IsConnected() bool {
	return false
}

// NewPrinterFromConfig creates the Printer for printerType:
// "file" (default), "usb", "network" or "none".
func NewPrinterFromConfig(printerType, usbPath, address, reportsDir string, width int) (Printer, error) {
	switch printerType {
	case "file", "":
		if reportsDir == "" {
			return nil, fmt.Errorf("printer: reports directory is required for file printer type")
		}
		return NewFilePrinter(reportsDir), nil
	case "usb":
		if usbPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(usbPath, width), nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(address, width), nil
	case "none":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, printerType)
	}
}
