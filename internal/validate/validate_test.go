package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/saft/internal/report"
	"github.com/cleared-dev/saft/internal/saft"
)

func TestAuditFile_GeneratedScenarioPasses(t *testing.T) {
	doc := generate(t, snapshot(1))

	data := marshal(t, doc)
	r := AuditFile(string(data))

	require.Len(t, r.Results, NumTests)
	for i, res := range r.Results {
		assert.Equal(t, i+1, res.TestNumber)
		assert.NotEmpty(t, res.TestName)
	}
	assert.Equal(t, 0, r.Failed, "failures: %v", r.Results)
	assert.Equal(t, NumTests, r.Passed+r.Warnings)

	for _, n := range []int{12, 13, 14, 15, 16, 17, 19} {
		assert.Equal(t, report.StatusPass, status(t, r, n), "test %d", n)
	}

	// Absent optional sections are tolerated.
	assert.Equal(t, report.StatusWarning, status(t, r, 7))
	assert.Equal(t, report.StatusWarning, status(t, r, 10))
}

func TestAuditFile_Idempotent(t *testing.T) {
	data := marshal(t, generate(t, snapshot(12)))

	first := Document(data)
	second := Document(data)
	assert.Equal(t, first, second)
	assert.False(t, first.HasFailures())
}

func TestDocument_ParseFailure(t *testing.T) {
	r := AuditFile("<AuditFile><Header></AuditFile")

	assert.Equal(t, 1, r.TotalTests)
	assert.Equal(t, 1, r.Failed)
	require.Len(t, r.Results, 1)
	assert.Equal(t, 0, r.Results[0].TestNumber)
	assert.Equal(t, "Document parse", r.Results[0].TestName)
	assert.Equal(t, report.StatusFail, r.Results[0].Status)
	assert.NotEmpty(t, r.Results[0].Message)
}

func TestDocument_EmptyRootReportsAllTests(t *testing.T) {
	r := AuditFile(`<AuditFile xmlns="mfp:anaf:dgti:d406:declaratie:v1"></AuditFile>`)

	require.Len(t, r.Results, NumTests)
	assert.True(t, r.HasFailures())
	assert.Equal(t, report.StatusFail, status(t, r, 5))
	assert.Equal(t, report.StatusFail, status(t, r, 27))
	assert.Equal(t, report.StatusFail, status(t, r, 28))
}

func TestEntryCountMismatch(t *testing.T) {
	doc := generate(t, snapshot(4))
	doc.GeneralLedgerEntries.NumberOfEntries = "5"

	r := validateDoc(t, doc)
	assert.Equal(t, []int{27}, failedTests(r))

	res, _ := r.Result(27)
	assert.Contains(t, res.Message, "declares 5")
	assert.Contains(t, res.Message, "has 4")
}

func TestTransactionBalanceTolerance(t *testing.T) {
	tests := []struct {
		name     string
		debit    string
		want14   report.Status
		want16   report.Status
		wantFail []int
	}{
		{"exact", "119.00", report.StatusPass, report.StatusPass, nil},
		{"off by 0.01", "119.01", report.StatusPass, report.StatusPass, nil},
		{"off by 0.02", "119.02", report.StatusFail, report.StatusFail, []int{14, 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := generate(t, snapshot(1))
			glLine(doc, 0, 0).DebitAmount.Amount = tt.debit

			r := validateDoc(t, doc)
			assert.Equal(t, tt.want14, status(t, r, 14))
			assert.Equal(t, tt.want16, status(t, r, 16))
			assert.Equal(t, tt.wantFail, failedTests(r))
		})
	}
}

func TestAggregateBalanceTolerance(t *testing.T) {
	// Each transaction is within 0.01 on its own; together they are 0.02 out.
	doc := generate(t, snapshot(2))
	glLine(doc, 0, 0).DebitAmount.Amount = "119.01"
	glLine(doc, 1, 0).DebitAmount.Amount = "119.01"

	r := validateDoc(t, doc)
	assert.Equal(t, report.StatusPass, status(t, r, 14))
	assert.Equal(t, report.StatusFail, status(t, r, 16))

	res, _ := r.Result(16)
	assert.Contains(t, res.Message, "238.02")
}

func TestTaxAmountTolerance(t *testing.T) {
	tests := []struct {
		amount string
		want   report.Status
	}{
		{"19.00", report.StatusPass},
		{"19.02", report.StatusPass},
		{"18.98", report.StatusPass},
		{"19.03", report.StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			doc := generate(t, snapshot(1))
			glLine(doc, 0, 2).TaxInformation.TaxAmount.Amount = tt.amount

			r := validateDoc(t, doc)
			assert.Equal(t, tt.want, status(t, r, 24))
		})
	}
}

func TestBalanceFormulaTolerance(t *testing.T) {
	tests := []struct {
		name       string
		recv, rev  string
		want       report.Status
	}{
		{"exact", "119.00", "100.00", report.StatusPass},
		{"off by 0.02", "119.02", "100.02", report.StatusPass},
		{"off by 0.03", "119.03", "100.03", report.StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := generate(t, snapshot(1))
			// Shift both sides so closing-balance equality (#13) still holds.
			glAccount(doc, "4111").ClosingDebitBalance = tt.recv
			glAccount(doc, "707").ClosingCreditBalance = tt.rev

			r := validateDoc(t, doc)
			assert.Equal(t, tt.want, status(t, r, 26))
			assert.Equal(t, report.StatusPass, status(t, r, 13))
		})
	}
}

func TestDecimalStability(t *testing.T) {
	snap := snapshot(1)
	snap.InvoiceLines[0].Quantity = dec("3")
	snap.InvoiceLines[0].UnitPrice = dec("33.333")
	snap.Invoices[0].Total = dec("118.99")

	doc := generate(t, snap)
	r := validateDoc(t, doc)
	assert.Equal(t, 0, r.Failed, "failures: %v", failedTests(r))
	assert.Equal(t, report.StatusPass, status(t, r, 24))

	data := string(marshal(t, doc))
	assert.Contains(t, data, "<UnitPrice>33.333</UnitPrice>")
	assert.Contains(t, data, "<NetTotal>99.99</NetTotal>")
	assert.NotContains(t, data, "99.999")
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name   string
		number int
		mutate func(*saft.AuditFile)
		want   report.Status
	}{
		{"missing city", 1, func(d *saft.AuditFile) { d.Header.Company.Address.City = "" }, report.StatusFail},
		{"missing last name", 2, func(d *saft.AuditFile) { d.Header.Company.Contact.ContactPerson.LastName = "" }, report.StatusFail},
		{"missing phone", 3, func(d *saft.AuditFile) { d.Header.Company.Contact.Telephone = "" }, report.StatusFail},
		{"no iban or account number", 4, func(d *saft.AuditFile) { d.Header.Company.BankAccount.IBANNumber = "" }, report.StatusFail},
		{"account number instead of iban", 4, func(d *saft.AuditFile) {
			d.Header.Company.BankAccount.IBANNumber = ""
			d.Header.Company.BankAccount.BankAccountNumber = "1234567890"
		}, report.StatusPass},
		{"missing sort code", 4, func(d *saft.AuditFile) { d.Header.Company.BankAccount.SortCode = "" }, report.StatusFail},
		{"account without description", 5, func(d *saft.AuditFile) { glAccount(d, "707").AccountDescription = "" }, report.StatusFail},
		{"customer id mismatch", 6, func(d *saft.AuditFile) {
			d.MasterFiles.Customers.Customer[0].CompanyStructure.RegistrationNumber = "RO11111111"
		}, report.StatusFail},
		{"customer without country", 6, func(d *saft.AuditFile) {
			d.MasterFiles.Customers.Customer[0].CompanyStructure.Address.Country = ""
		}, report.StatusFail},
		{"no customers", 6, func(d *saft.AuditFile) { d.MasterFiles.Customers = nil }, report.StatusPass},
		{"no suppliers", 7, func(d *saft.AuditFile) {}, report.StatusWarning},
		{"incomplete supplier", 7, func(d *saft.AuditFile) {
			d.MasterFiles.Suppliers = &saft.Suppliers{Supplier: []saft.Supplier{{SupplierID: "RO2222222", CompanyStructure: saft.CompanyStructure{RegistrationNumber: "RO2222222"}}}}
		}, report.StatusFail},
		{"tax entry without country", 8, func(d *saft.AuditFile) { d.MasterFiles.TaxTable.TaxTableEntry[0].Country = "" }, report.StatusFail},
		{"no products", 9, func(d *saft.AuditFile) { d.MasterFiles.Products = nil }, report.StatusWarning},
		{"product without description", 9, func(d *saft.AuditFile) { d.MasterFiles.Products.Product[0].Description = "" }, report.StatusFail},
		{"complete analysis types", 10, func(d *saft.AuditFile) {
			d.MasterFiles.AnalysisTypeTable = &saft.AnalysisTypeTable{AnalysisTypeTableEntry: []saft.AnalysisTypeTableEntry{
				{AnalysisType: "CC", AnalysisTypeDescription: "Centru de cost", AnalysisID: "CC01", AnalysisIDDescription: "Vanzari"},
			}}
		}, report.StatusPass},
		{"incomplete analysis types", 10, func(d *saft.AuditFile) {
			d.MasterFiles.AnalysisTypeTable = &saft.AnalysisTypeTable{AnalysisTypeTableEntry: []saft.AnalysisTypeTableEntry{{AnalysisType: "CC"}}}
		}, report.StatusFail},
		{"no units", 11, func(d *saft.AuditFile) { d.MasterFiles.UOMTable = nil }, report.StatusWarning},
		{"unit without description", 11, func(d *saft.AuditFile) { d.MasterFiles.UOMTable.UOMTableEntry[0].Description = "" }, report.StatusFail},
		{"opening unbalanced", 12, func(d *saft.AuditFile) { glAccount(d, "4111").OpeningDebitBalance = "10.00" }, report.StatusFail},
		{"opening within tolerance", 12, func(d *saft.AuditFile) { glAccount(d, "4111").OpeningDebitBalance = "0.01" }, report.StatusPass},
		{"off-balance accounts excluded", 12, func(d *saft.AuditFile) {
			accts := &d.MasterFiles.GeneralLedgerAccounts.Account
			*accts = append(*accts,
				saft.Account{AccountID: "8035", AccountDescription: "Stocuri in custodie", AccountType: "GL", OpeningDebitBalance: "500.00"},
				saft.Account{AccountID: "999", AccountDescription: "Memo", AccountType: "GL", OpeningCreditBalance: "7.00"},
			)
		}, report.StatusPass},
		{"closing unbalanced", 13, func(d *saft.AuditFile) { glAccount(d, "4427").ClosingCreditBalance = "20.00" }, report.StatusFail},
		{"unknown customer", 15, func(d *saft.AuditFile) { glLine(d, 0, 0).CustomerID = "RO999" }, report.StatusFail},
		{"unknown supplier", 15, func(d *saft.AuditFile) { glLine(d, 0, 1).SupplierID = "RO999" }, report.StatusFail},
		{"unknown account", 17, func(d *saft.AuditFile) { glLine(d, 0, 1).AccountID = "704" }, report.StatusFail},
		{"date after period", 18, func(d *saft.AuditFile) {
			d.GeneralLedgerEntries.Journal[0].Transaction[0].TransactionDate = "2025-02-01"
		}, report.StatusFail},
		{"date on last day", 18, func(d *saft.AuditFile) {
			d.GeneralLedgerEntries.Journal[0].Transaction[0].TransactionDate = "2025-01-31"
		}, report.StatusPass},
		{"bad selection criteria", 18, func(d *saft.AuditFile) { d.Header.SelectionCriteria.SelectionEndDate = "" }, report.StatusFail},
		{"unknown tax code", 19, func(d *saft.AuditFile) { glLine(d, 0, 2).TaxInformation.TaxCode = "999999" }, report.StatusFail},
		{"unknown invoice line tax code", 19, func(d *saft.AuditFile) {
			d.SourceDocuments.SalesInvoices.Invoice[0].Line[0].TaxInformation.TaxCode = "999999"
		}, report.StatusFail},
		{"line without amounts", 20, func(d *saft.AuditFile) { glLine(d, 0, 1).CreditAmount = nil }, report.StatusFail},
		{"line without record id", 20, func(d *saft.AuditFile) { glLine(d, 0, 1).RecordID = "" }, report.StatusFail},
		{"journal without description", 21, func(d *saft.AuditFile) { d.GeneralLedgerEntries.Journal[0].Description = "" }, report.StatusFail},
		{"missing business name", 22, func(d *saft.AuditFile) { d.Header.Company.BusinessName = "" }, report.StatusFail},
		{"missing tax registration", 22, func(d *saft.AuditFile) { d.Header.Company.TaxRegistration.TaxRegistrationNumber = "" }, report.StatusFail},
		{"foreign line currency", 23, func(d *saft.AuditFile) { glLine(d, 0, 1).CreditAmount.CurrencyCode = "EUR" }, report.StatusFail},
		{"base currency always allowed", 23, func(d *saft.AuditFile) {
			d.Header.DefaultCurrencyCode = "EUR"
			glLine(d, 0, 0).DebitAmount.CurrencyCode = "EUR"
		}, report.StatusPass},
		{"invoice line tax differs", 24, func(d *saft.AuditFile) {
			d.SourceDocuments.SalesInvoices.Invoice[0].Line[0].TaxInformation.TaxAmount.Amount = "9.00"
		}, report.StatusFail},
		{"missing source document", 25, func(d *saft.AuditFile) { glLine(d, 0, 1).SourceDocumentID = "" }, report.StatusWarning},
		{"closing not from movement", 26, func(d *saft.AuditFile) {
			glAccount(d, "4111").ClosingDebitBalance = "0.00"
			glAccount(d, "707").ClosingCreditBalance = "0.00"
			glAccount(d, "4427").ClosingCreditBalance = "0.00"
		}, report.StatusFail},
		{"count not a number", 27, func(d *saft.AuditFile) { d.GeneralLedgerEntries.NumberOfEntries = "one" }, report.StatusFail},
		{"single-line transaction", 28, func(d *saft.AuditFile) {
			txn := &d.GeneralLedgerEntries.Journal[0].Transaction[0]
			txn.Lines = txn.Lines[:1]
		}, report.StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := generate(t, snapshot(1))
			tt.mutate(doc)

			r := validateDoc(t, doc)
			require.Len(t, r.Results, NumTests)
			res, _ := r.Result(tt.number)
			assert.Equal(t, tt.want, res.Status, "test %d: %s %v", tt.number, res.Message, res.Details)
		})
	}
}

func TestCheckDetailsNameViolators(t *testing.T) {
	doc := generate(t, snapshot(3))
	glLine(doc, 0, 0).DebitAmount.Amount = "200.00"
	glLine(doc, 2, 0).DebitAmount.Amount = "1.00"

	r := validateDoc(t, doc)
	res, _ := r.Result(14)
	require.Len(t, res.Details, 2)
	assert.True(t, strings.HasPrefix(res.Details[0], "2025-01-001:"))
	assert.True(t, strings.HasPrefix(res.Details[1], "2025-01-003:"))
}
