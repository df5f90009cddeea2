package infra

// pdf.go: invoice document rendering with go-pdf/fpdf.
// Letter-size page with:
//   - Issuer header and invoice number
//   - Customer block (name, tax id, email, address)
//   - Item table (description, quantity, unit price, tax rate, total)
//   - Subtotal / tax / total block
//   - Payment method, status and notes
//
// Amounts are rounded to two decimals here and only here.

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/CuasDev/fel/internal/billing"
	"github.com/CuasDev/fel/internal/model"

	"github.com/go-pdf/fpdf"
)

// InvoiceFileName is the download/attachment name of an invoice PDF.
func InvoiceFileName(inv *model.Invoice) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, inv.InvoiceNumber)
	return fmt.Sprintf("factura_%s.pdf", safe)
}

// RenderInvoicePDF renders inv (with Customer and Items.Product loaded) and
// returns the PDF bytes.
func RenderInvoicePDF(inv *model.Invoice, companyName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW*0.6, 9, tr(companyName), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW*0.4, 9, tr("Factura "+inv.InvoiceNumber), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW*0.6, 5, tr("Fecha de emisión: "+inv.IssueDate.Format("02/01/2006")), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 5, tr("Estado: "+inv.Status), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW*0.6, 5, tr("Fecha de vencimiento: "+inv.DueDate.Format("02/01/2006")), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 5, tr("Forma de pago: "+inv.PaymentMethod), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Customer ─────────────────────────────────────────────────────────────
	if c := inv.Customer; c != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Cliente", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, tr(c.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 5, tr("RFC: "+c.TaxID), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 5, tr(c.Email), "", 1, "L", false, 0, "")
		if addr := formatAddress(c.Address); addr != "" {
			pdf.MultiCell(contentW, 5, tr(addr), "", "L", false)
		}
		pdf.Ln(4)
	}

	// ── Items ────────────────────────────────────────────────────────────────
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Descripción", 0.40, "L"},
		{"Cantidad", 0.12, "R"},
		{"Precio unit.", 0.16, "R"},
		{"IVA %", 0.10, "R"},
		{"Total", 0.22, "R"},
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, col := range cols {
		pdf.CellFormat(contentW*col.width, 7, tr(col.title), "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range inv.Items {
		desc := it.Description
		if it.Product != nil && it.Product.Code != "" {
			desc = it.Product.Code + " · " + desc
		}
		if len([]rune(desc)) > 48 {
			desc = string([]rune(desc)[:47]) + "…"
		}
		values := []string{
			desc,
			it.Quantity.String(),
			"$" + billing.Display(it.UnitPrice),
			it.TaxRate.String(),
			"$" + billing.Display(it.Total),
		}
		for i, col := range cols {
			pdf.CellFormat(contentW*col.width, 6, tr(values[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW * 0.78
	valueW := contentW * 0.22
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(labelW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, "$"+billing.Display(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelW, 6, "IVA:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, "$"+billing.Display(inv.TaxAmount), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(labelW, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 8, "$"+billing.Display(inv.Total), "", 1, "R", false, 0, "")

	// ── Notes ────────────────────────────────────────────────────────────────
	if strings.TrimSpace(inv.Notes) != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Notas: "+inv.Notes), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: write: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAddress(a model.Address) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
