// Package export writes revenue report tables as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/ghanu-pos/api/internal/receipt"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const moneyFormat = "#,##0.00"

// Filename is the download name for a report kind.
func Filename(kind string) string {
	return kind + "_report.xlsx"
}

// WriteXLSX writes the table as a one-sheet workbook: the title row, the
// header row, then the data rows. Cells that parse as decimals are stored as
// numbers.
func WriteXLSX(w io.Writer, t receipt.Table) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(t.Kind)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	sheet.AddRow().AddCell().SetString(t.Title)

	header := sheet.AddRow()
	for _, h := range t.Headers {
		header.AddCell().SetString(h)
	}

	for _, cells := range t.Rows {
		row := sheet.AddRow()
		for _, v := range cells {
			cell := row.AddCell()
			if d, err := decimal.NewFromString(v); err == nil {
				f, _ := d.Float64()
				cell.SetFloatWithFormat(f, moneyFormat)
				continue
			}
			cell.SetString(v)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
