package model

// Snapshot is everything read from a tenant for one generation run.
type Snapshot struct {
	TenantID     string
	Company      Company
	Accounts     []Account
	Parties      []Party
	TaxTable     []TaxEntry
	Invoices     []Invoice
	InvoiceLines []InvoiceLine
}

// LinesByInvoice groups the snapshot's invoice lines by invoice ID,
// preserving their order.
func (s Snapshot) LinesByInvoice() map[string][]InvoiceLine {
	out := make(map[string][]InvoiceLine, len(s.Invoices))
	for _, l := range s.InvoiceLines {
		out[l.InvoiceID] = append(out[l.InvoiceID], l)
	}
	return out
}
