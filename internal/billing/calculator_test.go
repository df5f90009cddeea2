package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name                  string
		qty, price, rate      string
		subtotal, tax, total string
	}{
		{"standard 16%", "3", "100", "16", "300", "48", "348"},
		{"zero rate", "2", "50", "0", "100", "0", "100"},
		{"fractional price", "1", "0.01", "16", "0.01", "0.0016", "0.0116"},
		{"fractional quantity", "2.5", "10", "21", "25", "5.25", "30.25"},
		{"zero quantity", "0", "99.99", "16", "0", "0", "0"},
		{"negative not rejected", "-1", "10", "10", "-10", "-1", "-11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLine(d(tt.qty), d(tt.price), d(tt.rate))
			assert.True(t, got.Subtotal.Equal(d(tt.subtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.TaxAmount.Equal(d(tt.tax)), "tax %s", got.TaxAmount)
			assert.True(t, got.Total.Equal(d(tt.total)), "total %s", got.Total)
		})
	}
}

func TestComputeLine_Identities(t *testing.T) {
	qtys := []string{"1", "3", "7.5", "120"}
	prices := []string{"0", "0.33", "19.99", "1000"}
	rates := []string{"0", "4", "10.5", "16", "21"}
	hundred := decimal.NewFromInt(100)

	for _, q := range qtys {
		for _, p := range prices {
			for _, r := range rates {
				got := ComputeLine(d(q), d(p), d(r))
				assert.True(t, got.Subtotal.Equal(d(q).Mul(d(p))))
				assert.True(t, got.TaxAmount.Equal(got.Subtotal.Mul(d(r)).Div(hundred)))
				assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount)))
			}
		}
	}
}

func TestComputeLine_Deterministic(t *testing.T) {
	a := ComputeLine(d("3"), d("33.33"), d("16"))
	b := ComputeLine(d("3"), d("33.33"), d("16"))
	assert.Equal(t, a.Total.String(), b.Total.String())
}

func TestCompute_TwoItems(t *testing.T) {
	item := LineInput{Quantity: d("3"), UnitPrice: d("100"), TaxRate: d("16")}
	lines, totals := Compute([]LineInput{item, item})

	assert.Len(t, lines, 2)
	assert.True(t, totals.Subtotal.Equal(d("600")))
	assert.True(t, totals.TaxAmount.Equal(d("96")))
	assert.True(t, totals.Total.Equal(d("696")))
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := ComputeLine(d("1"), d("0.1"), d("16"))
	b := ComputeLine(d("7"), d("3.33"), d("4"))
	c := ComputeLine(d("2"), d("1999.99"), d("21"))

	forward := Aggregate([]LineTotals{a, b, c})
	backward := Aggregate([]LineTotals{c, b, a})

	assert.True(t, forward.Total.Equal(backward.Total))
	assert.True(t, forward.Subtotal.Equal(a.Subtotal.Add(b.Subtotal).Add(c.Subtotal)))
	assert.True(t, forward.TaxAmount.Equal(a.TaxAmount.Add(b.TaxAmount).Add(c.TaxAmount)))
	assert.True(t, forward.Total.Equal(forward.Subtotal.Add(forward.TaxAmount)))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "348.00", Display(d("348")))
	assert.Equal(t, "0.01", Display(d("0.0116")))
	assert.Equal(t, "30.25", Display(d("30.25")))
}
