// Package billing holds the invoice arithmetic and the invoice lifecycle rules.
// Every function here is pure: no storage, no clock, no logging.
package billing

import "github.com/shopspring/decimal"

// LineInput carries the three raw fields of a line item that feed the calculator.
type LineInput struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // percentage, 16 means 16%
}

// LineTotals are the derived amounts of one line item.
type LineTotals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Totals are the invoice-level amounts.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeLine derives subtotal, tax and total for one line item.
// Nothing is rounded here; Shift(-2) divides by 100 without losing digits.
func ComputeLine(quantity, unitPrice, taxRate decimal.Decimal) LineTotals {
	subtotal := quantity.Mul(unitPrice)
	tax := subtotal.Mul(taxRate).Shift(-2)
	return LineTotals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// Aggregate folds computed line items into invoice totals.
func Aggregate(lines []LineTotals) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
		tax = tax.Add(l.TaxAmount)
	}
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// Compute runs the calculator over every item and aggregates the result.
// The returned slice is index-aligned with items.
func Compute(items []LineInput) ([]LineTotals, Totals) {
	lines := make([]LineTotals, len(items))
	for i, it := range items {
		lines[i] = ComputeLine(it.Quantity, it.UnitPrice, it.TaxRate)
	}
	return lines, Aggregate(lines)
}

// Display formats a money value with two decimals. Use only for presentation.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
