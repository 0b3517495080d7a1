package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/model"
)

const dateLayout = "2006-01-02"

// CSV headers, one per snapshot file.
var (
	PartyHeader       = []string{"party_id", "kind", "legal_name", "tax_id", "address", "billing_city", "billing_country"}
	TaxHeader         = []string{"tax_type", "tax_code", "description", "percentage", "country"}
	InvoiceHeader     = []string{"invoice_id", "number", "type", "customer_id", "issue_date", "due_date", "currency", "subtotal", "vat_amount", "total", "approval_status", "notes"}
	InvoiceLineHeader = []string{"line_id", "invoice_id", "product_code", "description", "quantity", "unit_price", "vat_rate", "unit", "amount"}
)

// readRows reads a CSV with a header row and decodes each data row.
func readRows[T any](r io.Reader, what string, header []string, decode func([]string) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", what, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	out := make([]T, 0, len(records)-1)
	for i, rec := range records[1:] {
		v, err := decode(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeRows[T any](w io.Writer, header []string, rows []T, encode func(T) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, v := range rows {
		if err := cw.Write(encode(v)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadParties reads parties.csv.
func ReadParties(r io.Reader) ([]model.Party, error) {
	return readRows(r, "parties", PartyHeader, UnmarshalParty)
}

// WriteParties writes parties.csv.
func WriteParties(w io.Writer, parties []model.Party) error {
	return writeRows(w, PartyHeader, parties, MarshalParty)
}

// MarshalParty converts a Party to a CSV row.
func MarshalParty(p model.Party) []string {
	return []string{p.ID, string(p.Kind), p.LegalName, p.TaxID, p.Address, p.BillingCity, p.BillingCountry}
}

// UnmarshalParty converts a CSV row to a Party.
func UnmarshalParty(rec []string) (model.Party, error) {
	kind := model.PartyKind(rec[1])
	if kind != model.PartyCustomer && kind != model.PartySupplier {
		return model.Party{}, fmt.Errorf("party %s: unknown kind %q", rec[0], rec[1])
	}
	return model.Party{
		ID:             rec[0],
		Kind:           kind,
		LegalName:      rec[2],
		TaxID:          rec[3],
		Address:        rec[4],
		BillingCity:    rec[5],
		BillingCountry: rec[6],
	}, nil
}

// ReadTaxTable reads tax-table.csv.
func ReadTaxTable(r io.Reader) ([]model.TaxEntry, error) {
	return readRows(r, "tax table", TaxHeader, UnmarshalTaxEntry)
}

// WriteTaxTable writes tax-table.csv.
func WriteTaxTable(w io.Writer, entries []model.TaxEntry) error {
	return writeRows(w, TaxHeader, entries, MarshalTaxEntry)
}

// MarshalTaxEntry converts a TaxEntry to a CSV row.
func MarshalTaxEntry(e model.TaxEntry) []string {
	return []string{e.TaxType, e.TaxCode, e.Description, e.Percentage.String(), e.Country}
}

// UnmarshalTaxEntry converts a CSV row to a TaxEntry.
func UnmarshalTaxEntry(rec []string) (model.TaxEntry, error) {
	pct, err := parseDecimal(rec[3], "percentage")
	if err != nil {
		return model.TaxEntry{}, fmt.Errorf("tax code %s: %w", rec[1], err)
	}
	return model.TaxEntry{
		TaxType:     rec[0],
		TaxCode:     rec[1],
		Description: rec[2],
		Percentage:  pct,
		Country:     rec[4],
	}, nil
}

// ReadInvoices reads invoices.csv.
func ReadInvoices(r io.Reader) ([]model.Invoice, error) {
	return readRows(r, "invoices", InvoiceHeader, UnmarshalInvoice)
}

// WriteInvoices writes invoices.csv.
func WriteInvoices(w io.Writer, invoices []model.Invoice) error {
	return writeRows(w, InvoiceHeader, invoices, MarshalInvoice)
}

// MarshalInvoice converts an Invoice to a CSV row. A zero due date is left blank.
func MarshalInvoice(inv model.Invoice) []string {
	return []string{
		inv.ID,
		inv.Number,
		string(inv.Type),
		inv.CustomerID,
		formatDate(inv.IssueDate),
		formatDate(inv.DueDate),
		inv.Currency,
		inv.Subtotal.StringFixed(2),
		inv.VATAmount.StringFixed(2),
		inv.Total.StringFixed(2),
		string(inv.ApprovalStatus),
		inv.Notes,
	}
}

// UnmarshalInvoice converts a CSV row to an Invoice.
func UnmarshalInvoice(rec []string) (model.Invoice, error) {
	inv := model.Invoice{
		ID:             rec[0],
		Number:         rec[1],
		Type:           model.InvoiceType(rec[2]),
		CustomerID:     rec[3],
		Currency:       rec[6],
		ApprovalStatus: model.ApprovalStatus(rec[10]),
		Notes:          rec[11],
	}
	if inv.Type == "" {
		inv.Type = model.InvoiceTypeInvoice
	}

	var err error
	if inv.IssueDate, err = parseDate(rec[4], "issue_date"); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}
	if inv.DueDate, err = parseDate(rec[5], "due_date"); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}
	if inv.Subtotal, err = parseDecimal(rec[7], "subtotal"); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}
	if inv.VATAmount, err = parseDecimal(rec[8], "vat_amount"); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}
	if inv.Total, err = parseDecimal(rec[9], "total"); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}
	return inv, nil
}

// ReadInvoiceLines reads invoice-lines.csv.
func ReadInvoiceLines(r io.Reader) ([]model.InvoiceLine, error) {
	return readRows(r, "invoice lines", InvoiceLineHeader, UnmarshalInvoiceLine)
}

// WriteInvoiceLines writes invoice-lines.csv.
func WriteInvoiceLines(w io.Writer, lines []model.InvoiceLine) error {
	return writeRows(w, InvoiceLineHeader, lines, MarshalInvoiceLine)
}

// MarshalInvoiceLine converts an InvoiceLine to a CSV row. A zero amount is
// left blank, meaning the upstream system did not record one.
func MarshalInvoiceLine(l model.InvoiceLine) []string {
	amount := ""
	if !l.Amount.IsZero() {
		amount = l.Amount.StringFixed(2)
	}
	return []string{
		l.ID,
		l.InvoiceID,
		l.ProductCode,
		l.Description,
		l.Quantity.String(),
		l.UnitPrice.String(),
		l.VATRate.String(),
		l.Unit,
		amount,
	}
}

// UnmarshalInvoiceLine converts a CSV row to an InvoiceLine.
func UnmarshalInvoiceLine(rec []string) (model.InvoiceLine, error) {
	l := model.InvoiceLine{
		ID:          rec[0],
		InvoiceID:   rec[1],
		ProductCode: rec[2],
		Description: rec[3],
		Unit:        rec[7],
	}

	var err error
	if l.Quantity, err = parseDecimal(rec[4], "quantity"); err != nil {
		return model.InvoiceLine{}, fmt.Errorf("line %s: %w", l.ID, err)
	}
	if l.UnitPrice, err = parseDecimal(rec[5], "unit_price"); err != nil {
		return model.InvoiceLine{}, fmt.Errorf("line %s: %w", l.ID, err)
	}
	if l.VATRate, err = parseDecimal(rec[6], "vat_rate"); err != nil {
		return model.InvoiceLine{}, fmt.Errorf("line %s: %w", l.ID, err)
	}
	if l.Amount, err = parseDecimal(rec[8], "amount"); err != nil {
		return model.InvoiceLine{}, fmt.Errorf("line %s: %w", l.ID, err)
	}
	return l, nil
}

// parseDecimal treats a blank field as zero.
func parseDecimal(s, column string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", column, s, err)
	}
	return d, nil
}

// parseDate treats a blank field as the zero time.
func parseDate(s, column string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", column, s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
