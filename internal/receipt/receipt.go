// Package receipt renders the plain-text documents sent to the printer:
// customer receipts, queue tickets, order summaries and revenue reports.
package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ghanu-pos/api/internal/model"
)

// Width is the character width of rules and centred lines.
const Width = 40

const currency = "ج.م"

var (
	heavyRule = strings.Repeat("=", Width)
	lightRule = strings.Repeat("-", Width)
)

// Restaurant is the header printed on customer receipts.
type Restaurant struct {
	Name    string
	Phone   string
	Address string
}

// Receipt is the customer receipt printed when an order is placed.
func Receipt(o model.Order, r Restaurant) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(heavyRule + "\n")
	b.WriteString(center(r.Name) + "\n")
	b.WriteString(heavyRule + "\n\n")
	fmt.Fprintf(&b, "رقم الاوردر: %d\n", o.OrderNumber)
	fmt.Fprintf(&b, "التاريخ والوقت: %s\n\n", o.DateTime)
	if r.Phone != "" {
		fmt.Fprintf(&b, "هاتف: %s\n", r.Phone)
	}
	if r.Address != "" {
		fmt.Fprintf(&b, "العنوان: %s\n", r.Address)
	}
	b.WriteString("\n")

	writeItemTable(&b, o)

	fmt.Fprintf(&b, "%-20s%s\n", "طريقة الاستلام:", pickupLabel(o))
	if o.IsDelivery() {
		fmt.Fprintf(&b, "%-20s%s\n", "عنوان التوصيل:", *o.DeliveryLocation)
		fmt.Fprintf(&b, "رقم الهاتف: %s\n", deref(o.PhoneNumber))
		fmt.Fprintf(&b, "%-20s%s %s\n", "رسوم التوصيل:", o.DeliveryFee.StringFixed(2), currency)
	}

	b.WriteString("\n" + heavyRule + "\n")
	b.WriteString(center("شكراً لزيارتكم "+r.Name) + "\n")
	b.WriteString(center("نتمنى لكم وجبة شهية") + "\n")
	b.WriteString(heavyRule + "\n")
	return b.String()
}

func writeItemTable(b *strings.Builder, o model.Order) {
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(b, "%-20s%-10s%-10s%-10s\n", "الصنف", "الكمية", "السعر", "الإجمالي")
	b.WriteString(lightRule + "\n")
	for _, it := range o.Items {
		fmt.Fprintf(b, "%-20s%-10d%-10s%-10s\n", it.Name, it.Quantity, it.Price.StringFixed(2), it.Total.StringFixed(2))
	}
	b.WriteString("\n" + lightRule + "\n")
	fmt.Fprintf(b, "%-30s%10s\n", "الإجمالي:", o.Total.StringFixed(2))
	b.WriteString(heavyRule + "\n\n")
}

// Ticket is the short slip reprinted for an order in the queue.
func Ticket(o model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "رقم الطلب: %d\n", o.OrderNumber)
	fmt.Fprintf(&b, "التاريخ والوقت: %s\n\n", o.DateTime)
	b.WriteString("الأصناف:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%s x%d - %s %s\n", it.Name, it.Quantity, it.Total.StringFixed(2), currency)
	}
	fmt.Fprintf(&b, "\nالإجمالي: %s %s\n", o.Total.StringFixed(2), currency)

	if o.IsDelivery() {
		b.WriteString("\nنوع الطلب: توصيل")
		fmt.Fprintf(&b, "\nعنوان التوصيل: %s", *o.DeliveryLocation)
		fmt.Fprintf(&b, "\nرقم الهاتف: %s", deref(o.PhoneNumber))
		fmt.Fprintf(&b, "\nرسوم التوصيل: %s %s", o.DeliveryFee.StringFixed(2), currency)
	} else {
		b.WriteString("\nنوع الطلب: استلام من المطعم")
	}
	b.WriteString("\n")
	return b.String()
}

// OrderSummary is the report-view summary of one completed or cancelled order.
func OrderSummary(o model.Order, restaurantName string) string {
	var b strings.Builder
	b.WriteString("===== ملخص الطلب =====\n")
	b.WriteString(restaurantName + "\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "رقم الطلب: %d\n", o.OrderNumber)
	fmt.Fprintf(&b, "حالة الطلب: %s\n\n", o.Status)
	for _, it := range o.Items {
		writeSummaryItem(&b, it)
	}
	fmt.Fprintf(&b, "\nالإجمالي: %s %s", o.Total.StringFixed(2), currency)
	if o.IsDelivery() {
		fmt.Fprintf(&b, "\nعنوان التوصيل: %s", *o.DeliveryLocation)
	}
	b.WriteString("\n")
	return b.String()
}

// AllReports lists every given order in one document.
func AllReports(orders []model.Order) string {
	var b strings.Builder
	b.WriteString("جميع التقارير\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "رقم الطلب: %d\n", o.OrderNumber)
		fmt.Fprintf(&b, "التاريخ: %s\n", o.DateTime)
		fmt.Fprintf(&b, "الإجمالي: %s %s\n", o.Total.StringFixed(2), currency)
		fmt.Fprintf(&b, "الحالة: %s\n", o.Status)
		if o.IsDelivery() {
			fmt.Fprintf(&b, "توصيل إلى: %s\n", *o.DeliveryLocation)
		} else {
			b.WriteString("استلام من المطعم\n")
		}
		b.WriteString("الأصناف:\n")
		for _, it := range o.Items {
			writeSummaryItem(&b, it)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeSummaryItem(b *strings.Builder, it model.OrderItem) {
	fmt.Fprintf(b, "%s: %d x %s %s = %s %s\n", it.Name, it.Quantity, it.Price.StringFixed(2), currency, it.Total.StringFixed(2), currency)
}

func pickupLabel(o model.Order) string {
	if o.IsDelivery() {
		return "توصيل"
	}
	return "استلام من المطعم"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// center pads s with spaces to Width runes, extra space going right.
func center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Width {
		return s
	}
	left := (Width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", Width-n-left)
}
