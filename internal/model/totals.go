package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the computed monetary totals of an invoice.
type Totals struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// LineNet returns quantity × unit price truncated to cents.
func LineNet(l InvoiceLine) decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Truncate(2)
}

// LineVAT returns the unrounded VAT on a line.
func LineVAT(l InvoiceLine) decimal.Decimal {
	return LineNet(l).Mul(l.VATRate).Div(hundred)
}

// ComputeTotals sums line nets and VAT. VAT is accumulated at full precision
// and rounded to cents once.
func ComputeTotals(lines []InvoiceLine) Totals {
	subtotal := decimal.Zero
	vat := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineNet(l))
		vat = vat.Add(LineVAT(l))
	}
	vat = vat.Round(2)
	return Totals{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    subtotal.Add(vat),
	}
}
