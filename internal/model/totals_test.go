package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []InvoiceLine
		subtotal string
		vat      string
		total    string
	}{
		{
			name:     "fractional unit price",
			lines:    []InvoiceLine{{Quantity: dec("3"), UnitPrice: dec("33.333"), VATRate: dec("19")}},
			subtotal: "99.99",
			vat:      "19.00",
			total:    "118.99",
		},
		{
			name: "mixed rates",
			lines: []InvoiceLine{
				{Quantity: dec("1"), UnitPrice: dec("100"), VATRate: dec("19")},
				{Quantity: dec("2"), UnitPrice: dec("50"), VATRate: dec("9")},
			},
			subtotal: "200.00",
			vat:      "28.00",
			total:    "228.00",
		},
		{
			name:     "zero rate",
			lines:    []InvoiceLine{{Quantity: dec("4"), UnitPrice: dec("2.5"), VATRate: dec("0")}},
			subtotal: "10.00",
			vat:      "0.00",
			total:    "10.00",
		},
		{
			name:     "no lines",
			subtotal: "0.00",
			vat:      "0.00",
			total:    "0.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines)
			assert.Equal(t, tt.subtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.vat, got.VAT.StringFixed(2))
			assert.Equal(t, tt.total, got.Total.StringFixed(2))
		})
	}
}

func TestPartyRef(t *testing.T) {
	assert.Equal(t, "RO123456", Party{ID: "c-1", TaxID: "RO123456"}.Ref())
	assert.Equal(t, "c-1", Party{ID: "c-1"}.Ref())
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, AccountTypeRevenue.Valid())
	assert.False(t, AccountType("income").Valid())
}
