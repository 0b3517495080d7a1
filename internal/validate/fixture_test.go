package validate

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/saft/internal/config"
	"github.com/cleared-dev/saft/internal/ledger"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/report"
	"github.com/cleared-dev/saft/internal/saft"
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

// snapshot returns a tenant with complete master data and n invoices of
// 100.00 + 19% VAT, issued on consecutive days from 2025-01-10.
func snapshot(n int) model.Snapshot {
	snap := model.Snapshot{
		TenantID: "acme",
		Company: model.Company{
			RegistrationNumber:    "12345678",
			TaxRegistrationNumber: "RO12345678",
			Name:                  "Acme Distributie SRL",
			BusinessName:          "Acme",
			Street:                "Str. Lunga 1",
			City:                  "Brasov",
			PostalCode:            "500001",
			Country:               "RO",
			ContactFirstName:      "Ana",
			ContactLastName:       "Pop",
			Telephone:             "+40 268 000 000",
			IBAN:                  "RO49AAAA1B31007593840000",
			BankAccountName:       "Acme Distributie SRL",
			SortCode:              "BTRLRO22",
		},
		Accounts: []model.Account{
			{ID: "1", Code: "4111", Name: "Clienti", Type: model.AccountTypeAsset},
			{ID: "2", Code: "707", Name: "Venituri din vanzarea marfurilor", Type: model.AccountTypeRevenue},
			{ID: "3", Code: "4427", Name: "TVA colectata", Type: model.AccountTypeLiability},
		},
		Parties: []model.Party{
			{ID: "c1", Kind: model.PartyCustomer, LegalName: "Client SRL", TaxID: "RO87654321", BillingCity: "Iasi", BillingCountry: "RO"},
		},
		TaxTable: []model.TaxEntry{
			{TaxType: "IVA", TaxCode: "310309", Description: "TVA 19%", Percentage: dec("19"), Country: "RO"},
		},
	}
	for i := 0; i < n; i++ {
		invID := fmt.Sprintf("i%d", i+1)
		snap.Invoices = append(snap.Invoices, model.Invoice{
			ID: invID, Number: fmt.Sprintf("FT-%03d", i+1), Type: model.InvoiceTypeInvoice, CustomerID: "c1",
			IssueDate: date("2025-01-10").AddDate(0, 0, i),
			Subtotal:  dec("100.00"), VATAmount: dec("19.00"), Total: dec("119.00"),
		})
		snap.InvoiceLines = append(snap.InvoiceLines, model.InvoiceLine{
			ID: invID + "-1", InvoiceID: invID, ProductCode: "SRV", Description: "Consultanta",
			Quantity: dec("1"), UnitPrice: dec("100"), VATRate: dec("19"),
		})
	}
	return snap
}

func generate(t *testing.T, snap model.Snapshot) *saft.AuditFile {
	t.Helper()
	b := ledger.NewBuilder(config.Default(), nil)
	b.Now = func() time.Time { return date("2025-02-01") }
	doc, err := b.Build(snap, date("2025-01-01"), date("2025-01-31"))
	require.NoError(t, err)
	return doc
}

func marshal(t *testing.T, doc *saft.AuditFile) []byte {
	t.Helper()
	data, err := saft.Marshal(doc)
	require.NoError(t, err)
	return data
}

func validateDoc(t *testing.T, doc *saft.AuditFile) report.Report {
	t.Helper()
	return Document(marshal(t, doc))
}

func failedTests(r report.Report) []int {
	var out []int
	for _, res := range r.Results {
		if res.Status == report.StatusFail {
			out = append(out, res.TestNumber)
		}
	}
	return out
}

func status(t *testing.T, r report.Report, number int) report.Status {
	t.Helper()
	res, ok := r.Result(number)
	require.True(t, ok, "test %d not in report", number)
	return res.Status
}

func glLine(doc *saft.AuditFile, txn, line int) *saft.Line {
	return &doc.GeneralLedgerEntries.Journal[0].Transaction[txn].Lines[line]
}

func glAccount(doc *saft.AuditFile, code string) *saft.Account {
	accts := doc.MasterFiles.GeneralLedgerAccounts.Account
	for i := range accts {
		if accts[i].AccountID == code {
			return &accts[i]
		}
	}
	panic("no account " + code)
}
