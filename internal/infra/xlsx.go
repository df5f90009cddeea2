package infra

import (
	"bytes"
	"fmt"

	"github.com/CuasDev/fel/internal/billing"
	"github.com/CuasDev/fel/internal/dto"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Facturas"

// RenderReportXLSX writes the invoice report as a workbook with one row per
// invoice followed by a summary block.
func RenderReportXLSX(report *dto.InvoiceReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Número", "Fecha de emisión", "Vencimiento", "Cliente", "RFC", "Estado", "Forma de pago", "Subtotal", "IVA", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(reportSheet, cell, h)
	}

	for i, inv := range report.Invoices {
		row := i + 2
		f.SetCellValue(reportSheet, fmt.Sprintf("A%d", row), inv.InvoiceNumber)
		f.SetCellValue(reportSheet, fmt.Sprintf("B%d", row), inv.IssueDate.Format("02/01/2006"))
		f.SetCellValue(reportSheet, fmt.Sprintf("C%d", row), inv.DueDate.Format("02/01/2006"))
		f.SetCellValue(reportSheet, fmt.Sprintf("D%d", row), inv.Customer.Name)
		f.SetCellValue(reportSheet, fmt.Sprintf("E%d", row), inv.Customer.TaxID)
		f.SetCellValue(reportSheet, fmt.Sprintf("F%d", row), inv.Status)
		f.SetCellValue(reportSheet, fmt.Sprintf("G%d", row), inv.PaymentMethod)
		f.SetCellValue(reportSheet, fmt.Sprintf("H%d", row), billing.Display(inv.Subtotal))
		f.SetCellValue(reportSheet, fmt.Sprintf("I%d", row), billing.Display(inv.TaxAmount))
		f.SetCellValue(reportSheet, fmt.Sprintf("J%d", row), billing.Display(inv.Total))
	}

	s := report.Summary
	row := len(report.Invoices) + 3
	summary := [][2]interface{}{
		{"Facturas", s.Count},
		{"Subtotal", billing.Display(s.TotalSubtotal)},
		{"IVA", billing.Display(s.TotalTax)},
		{"Total", billing.Display(s.TotalAmount)},
	}
	for _, st := range billing.Statuses {
		summary = append(summary, [2]interface{}{"Estado " + string(st), s.ByStatus[string(st)]})
	}
	for i, kv := range summary {
		f.SetCellValue(reportSheet, fmt.Sprintf("A%d", row+i), kv[0])
		f.SetCellValue(reportSheet, fmt.Sprintf("B%d", row+i), kv[1])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
