package compliance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	inv       model.Invoice
	issuer    model.Company
	recipient model.Party
	lines     []model.InvoiceLine
}

func valid() *fixture {
	return &fixture{
		inv: model.Invoice{
			ID: "i1", Number: "FT-2025-001", Type: model.InvoiceTypeInvoice, CustomerID: "c1",
			IssueDate: date("2025-03-01"), DueDate: date("2025-03-31"), Currency: "RON",
			Subtotal: dec("150.00"), VATAmount: dec("28.50"), Total: dec("178.50"),
			ApprovalStatus: model.ApprovalApproved,
		},
		issuer: model.Company{
			RegistrationNumber: "12345678", TaxRegistrationNumber: "RO12345678", TradeRegisterNumber: "J40/1234/2020",
			Name: "Acme SRL", Street: "Str. Lunga 1", City: "Brasov", Country: "RO",
		},
		recipient: model.Party{
			ID: "c1", Kind: model.PartyCustomer, LegalName: "Client SRL", TaxID: "87654321",
			Address: "Bd. Unirii 5", BillingCity: "Iasi", BillingCountry: "RO",
		},
		lines: []model.InvoiceLine{
			{ID: "l1", InvoiceID: "i1", Description: "Consultanta", Quantity: dec("1"), UnitPrice: dec("100"), VATRate: dec("19"), Amount: dec("100.00")},
			{ID: "l2", InvoiceID: "i1", Description: "Suport", Quantity: dec("2"), UnitPrice: dec("25"), VATRate: dec("19")},
		},
	}
}

func (f *fixture) check() report.Report {
	return Check(f.inv, f.issuer, f.recipient, f.lines)
}

func status(t *testing.T, r report.Report, number int) report.Status {
	t.Helper()
	res, ok := r.Result(number)
	require.True(t, ok, "test %d not in report", number)
	return res.Status
}

func TestCheck_ValidInvoicePasses(t *testing.T) {
	r := valid().check()

	require.Len(t, r.Results, NumTests)
	for i, res := range r.Results {
		assert.Equal(t, i+1, res.TestNumber)
		assert.Equal(t, report.StatusPass, res.Status, "test %d %s: %s", res.TestNumber, res.TestName, res.Message)
	}
	assert.Equal(t, NumTests, r.Passed)
}

func TestCheck_DecimalStability(t *testing.T) {
	f := valid()
	f.lines = []model.InvoiceLine{
		{Description: "Piese", Quantity: dec("3"), UnitPrice: dec("33.333"), VATRate: dec("19")},
	}
	f.inv.Subtotal = dec("99.99")
	f.inv.VATAmount = dec("19.00")
	f.inv.Total = dec("118.99")

	r := f.check()
	assert.Equal(t, 0, r.Failed)
	assert.Equal(t, 0, r.Warnings)
	assert.Equal(t, report.StatusPass, status(t, r, 14))
	assert.Equal(t, report.StatusPass, status(t, r, 15))
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name   string
		number int
		mutate func(*fixture)
		want   report.Status
	}{
		{"no number", 1, func(f *fixture) { f.inv.Number = " " }, report.StatusFail},
		{"no issue date", 2, func(f *fixture) { f.inv.IssueDate = time.Time{} }, report.StatusFail},
		{"lowercase currency", 3, func(f *fixture) { f.inv.Currency = "ron" }, report.StatusFail},
		{"empty currency", 3, func(f *fixture) { f.inv.Currency = "" }, report.StatusFail},
		{"no issuer name", 4, func(f *fixture) { f.issuer.Name = "" }, report.StatusFail},
		{"no issuer tax id", 5, func(f *fixture) { f.issuer.TaxRegistrationNumber = "" }, report.StatusFail},
		{"no issuer street", 6, func(f *fixture) { f.issuer.Street = "" }, report.StatusFail},
		{"no trade register number", 7, func(f *fixture) { f.issuer.TradeRegisterNumber = "" }, report.StatusFail},
		{"no recipient name", 8, func(f *fixture) { f.recipient.LegalName = "" }, report.StatusFail},
		{"no recipient tax id", 9, func(f *fixture) { f.recipient.TaxID = "" }, report.StatusFail},
		{"no recipient city", 10, func(f *fixture) { f.recipient.BillingCity = "" }, report.StatusFail},
		{"no lines", 11, func(f *fixture) { f.lines = nil }, report.StatusFail},
		{"line without description", 12, func(f *fixture) { f.lines[1].Description = "" }, report.StatusFail},
		{"line without quantity", 12, func(f *fixture) { f.lines[1].Quantity = decimal.Zero }, report.StatusFail},
		{"negative rate", 12, func(f *fixture) { f.lines[1].VATRate = dec("-1") }, report.StatusFail},
		{"recorded amount off", 13, func(f *fixture) { f.lines[0].Amount = dec("100.02") }, report.StatusFail},
		{"recorded amount within a cent", 13, func(f *fixture) { f.lines[0].Amount = dec("99.99") }, report.StatusPass},
		{"subtotal off by 0.02", 14, func(f *fixture) { f.inv.Subtotal = dec("150.02") }, report.StatusPass},
		{"subtotal off by 0.03", 14, func(f *fixture) { f.inv.Subtotal = dec("150.03") }, report.StatusFail},
		{"vat off by 0.02", 15, func(f *fixture) { f.inv.VATAmount = dec("28.48") }, report.StatusPass},
		{"vat off by 0.03", 15, func(f *fixture) { f.inv.VATAmount = dec("28.53") }, report.StatusFail},
		{"total off by 0.02", 16, func(f *fixture) { f.inv.Total = dec("178.52") }, report.StatusPass},
		{"total off by 0.03", 16, func(f *fixture) { f.inv.Total = dec("178.47") }, report.StatusFail},
		{"issuer tax id lowercase prefix", 17, func(f *fixture) { f.issuer.TaxRegistrationNumber = "ro12345678" }, report.StatusFail},
		{"issuer tax id too short", 17, func(f *fixture) { f.issuer.TaxRegistrationNumber = "RO12345" }, report.StatusFail},
		{"recipient tax id too long", 18, func(f *fixture) { f.recipient.TaxID = "12345678901" }, report.StatusFail},
		{"recipient tax id six digits", 18, func(f *fixture) { f.recipient.TaxID = "123456" }, report.StatusPass},
		{"due before issue", 19, func(f *fixture) { f.inv.DueDate = date("2025-02-28") }, report.StatusFail},
		{"due on issue day", 19, func(f *fixture) { f.inv.DueDate = f.inv.IssueDate }, report.StatusPass},
		{"no due date", 19, func(f *fixture) { f.inv.DueDate = time.Time{} }, report.StatusPass},
		{"rejected", 25, func(f *fixture) { f.inv.ApprovalStatus = model.ApprovalRejected }, report.StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)

			r := f.check()
			require.Len(t, r.Results, NumTests)
			assert.Equal(t, tt.want, status(t, r, tt.number))
		})
	}
}

func TestCheck_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		number int
		mutate func(*fixture)
	}{
		{"unusual currency", 20, func(f *fixture) { f.inv.Currency = "XAU" }},
		{"long payment term", 21, func(f *fixture) { f.inv.DueDate = f.inv.IssueDate.AddDate(0, 0, 366) }},
		{"non-standard rate", 22, func(f *fixture) { f.lines[1].VATRate = dec("21") }},
		{"three-decimal total", 23, func(f *fixture) { f.inv.Total = dec("178.505") }},
		{"three-decimal line amount", 23, func(f *fixture) { f.lines[0].Amount = dec("100.001") }},
		{"five-decimal unit price", 24, func(f *fixture) { f.lines[1].UnitPrice = dec("25.00001") }},
		{"pending", 25, func(f *fixture) { f.inv.ApprovalStatus = model.ApprovalPending }},
		{"unknown approval", 25, func(f *fixture) { f.inv.ApprovalStatus = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)

			r := f.check()
			assert.Equal(t, report.StatusWarning, status(t, r, tt.number))
		})
	}
}

func TestCheck_PaymentTermBoundary(t *testing.T) {
	f := valid()
	f.inv.DueDate = f.inv.IssueDate.AddDate(0, 0, MaxPaymentTermDays)
	assert.Equal(t, report.StatusPass, status(t, f.check(), 21))
}

func TestCheck_FourDecimalUnitPricePasses(t *testing.T) {
	f := valid()
	f.lines[1].UnitPrice = dec("25.0000")
	f.lines = append(f.lines, model.InvoiceLine{Description: "x", Quantity: dec("1"), UnitPrice: dec("0.1234"), VATRate: dec("19")})

	r := f.check()
	assert.Equal(t, report.StatusPass, status(t, r, 24))
}

func TestCheck_ReportsAllTestsEvenWhenEmpty(t *testing.T) {
	r := Check(model.Invoice{}, model.Company{}, model.Party{}, nil)

	require.Len(t, r.Results, NumTests)
	assert.True(t, r.HasFailures())
	assert.Equal(t, NumTests, r.Passed+r.Failed+r.Warnings)
}
