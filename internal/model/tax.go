package model

import "github.com/shopspring/decimal"

// TaxEntry is one row of the tenant's tax table.
type TaxEntry struct {
	TaxType     string // IVA, IS, NS, NA
	TaxCode     string
	Description string
	Percentage  decimal.Decimal
	Country     string
}
