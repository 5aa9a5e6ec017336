package receipt

import (
	"fmt"
	"strings"

	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/service"
)

// InvalidCost is shown in place of a supplier cost that is not a number.
const InvalidCost = "Invalid Cost"

// Table is a rendered revenue report: a title, column headers and string
// rows with the totals row last. It feeds both printing and xlsx export.
type Table struct {
	Kind    string     `json:"kind"`
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func MonthlyTable(r service.MonthlyReport) Table {
	t := Table{
		Kind:    enum.ReportMonthly,
		Title:   "تقرير الإيرادات الشهرية",
		Headers: []string{"الشهر", "الايراد", "التكاليف", "صافي الربح"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, monthlyCells(row))
	}
	t.Rows = append(t.Rows, monthlyCells(r.Total))
	return t
}

func monthlyCells(row service.MonthlyRow) []string {
	return []string{row.Month, row.Revenue.StringFixed(2), row.Costs.StringFixed(2), row.Profit.StringFixed(2)}
}

func DailyTable(r service.DailyReport) Table {
	t := Table{
		Kind:    enum.ReportDaily,
		Title:   "تقرير الإيرادات اليومية",
		Headers: []string{"التاريخ", "الوقت", "الإيراد"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{row.Date, row.Time, row.Revenue.StringFixed(2)})
	}
	t.Rows = append(t.Rows, []string{"إجمالي الإيرادات", "", r.Total.StringFixed(2)})
	return t
}

func SupplierTable(r service.SupplierReport) Table {
	t := Table{
		Kind:    enum.ReportSupplier,
		Title:   "تقرير تكاليف الموردين",
		Headers: []string{"التاريخ", "الوقت", "المورد", "نوع البضاعة", "ملاحظات", "التكلفة", "نوع الدفع"},
	}
	for _, row := range r.Rows {
		cost := InvalidCost
		if row.Cost.Valid {
			cost = row.Cost.Decimal.StringFixed(2)
		}
		t.Rows = append(t.Rows, []string{
			row.Date, row.Time, row.Supplier, row.GoodsType, row.Notes, cost, string(row.PaymentType),
		})
	}
	t.Rows = append(t.Rows, []string{"إجمالي التكاليف", "", "", "", "", r.Total.StringFixed(2), ""})
	return t
}

// Text lays the table out for printing, one "header: value" line per cell.
func (t Table) Text() string {
	var b strings.Builder
	b.WriteString("تقرير\n\n")
	b.WriteString(t.Title + "\n\n")
	for _, row := range t.Rows {
		for i, h := range t.Headers {
			if i < len(row) {
				fmt.Fprintf(&b, "%s: %s\n", h, row[i])
			}
		}
		b.WriteString(lightRule + "\n")
	}
	return b.String()
}
