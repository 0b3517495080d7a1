package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/report"
	"github.com/cleared-dev/saft/internal/saft"
)

// baseCurrency is always accepted on lines regardless of the header currency.
const baseCurrency = "RON"

var hundred = decimal.NewFromInt(100)

type check struct {
	number int
	name   string
	fn     func(*state) report.Result
}

// checks run in this order; numbers and names are stable across releases.
var checks = []check{
	{1, "Header address", checkHeaderAddress},
	{2, "Header contact", checkHeaderContact},
	{3, "Header phone", checkHeaderPhone},
	{4, "Header bank account", checkHeaderBankAccount},
	{5, "Accounts completeness", checkAccounts},
	{6, "Customers completeness", checkCustomers},
	{7, "Suppliers completeness", checkSuppliers},
	{8, "Tax table completeness", checkTaxTable},
	{9, "Products completeness", checkProducts},
	{10, "Analysis types", checkAnalysisTypes},
	{11, "Units of measure", checkUOM},
	{12, "Opening balance equality", checkOpeningBalance},
	{13, "Closing balance equality", checkClosingBalance},
	{14, "Per-transaction balance", checkTransactionBalance},
	{15, "Customer/supplier reference integrity", checkPartyReferences},
	{16, "Aggregate debit/credit equality", checkAggregateBalance},
	{17, "Account reference integrity", checkAccountReferences},
	{18, "Transaction date range", checkDateRange},
	{19, "Tax code reference integrity", checkTaxCodeReferences},
	{20, "Line completeness", checkLineCompleteness},
	{21, "Journal consistency", checkJournals},
	{22, "Header completeness", checkHeaderCompleteness},
	{23, "Currency consistency", checkCurrency},
	{24, "Tax amount recomputation", checkTaxAmounts},
	{25, "Source document linkage", checkSourceLinks},
	{26, "Balance-formula verification", checkBalanceFormula},
	{27, "Declared vs actual entry count", checkEntryCount},
	{28, "Schema structure", checkStructure},
}

func pass(format string, args ...any) report.Result {
	return report.Result{Status: report.StatusPass, Message: fmt.Sprintf(format, args...)}
}

func fail(details []string, format string, args ...any) report.Result {
	return report.Result{Status: report.StatusFail, Message: fmt.Sprintf(format, args...), Details: details}
}

func warn(details []string, format string, args ...any) report.Result {
	return report.Result{Status: report.StatusWarning, Message: fmt.Sprintf(format, args...), Details: details}
}

// violations passes when details is empty and fails otherwise.
func violations(details []string, ok, bad string) report.Result {
	if len(details) == 0 {
		return pass("%s", ok)
	}
	return fail(details, "%s (%d)", bad, len(details))
}

// missing lists the names whose values are empty.
func missing(fields ...string) []string {
	var out []string
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			out = append(out, fields[i])
		}
	}
	return out
}

func checkHeaderAddress(st *state) report.Result {
	a := st.doc.Header.Company.Address
	if m := missing("City", a.City, "Country", a.Country); len(m) > 0 {
		return fail(m, "company address is missing %s", strings.Join(m, ", "))
	}
	return pass("company address has city and country")
}

func checkHeaderContact(st *state) report.Result {
	p := st.doc.Header.Company.Contact.ContactPerson
	if m := missing("FirstName", p.FirstName, "LastName", p.LastName); len(m) > 0 {
		return fail(m, "contact person is missing %s", strings.Join(m, ", "))
	}
	return pass("contact person %s %s", p.FirstName, p.LastName)
}

func checkHeaderPhone(st *state) report.Result {
	if st.doc.Header.Company.Contact.Telephone == "" {
		return fail(nil, "company telephone is missing")
	}
	return pass("company telephone present")
}

func checkHeaderBankAccount(st *state) report.Result {
	b := st.doc.Header.Company.BankAccount
	var m []string
	if b.IBANNumber == "" && b.BankAccountNumber == "" {
		m = append(m, "IBANNumber or BankAccountNumber")
	}
	m = append(m, missing("BankAccountName", b.BankAccountName, "SortCode", b.SortCode)...)
	if len(m) > 0 {
		return fail(m, "bank account is missing %s", strings.Join(m, ", "))
	}
	return pass("bank account complete")
}

func checkAccounts(st *state) report.Result {
	accts := st.accounts()
	if len(accts) == 0 {
		return fail(nil, "no general ledger accounts")
	}
	var details []string
	for i, a := range accts {
		if m := missing("AccountID", a.AccountID, "AccountDescription", a.AccountDescription, "AccountType", a.AccountType); len(m) > 0 {
			details = append(details, fmt.Sprintf("account %d (%s): missing %s", i+1, a.AccountID, strings.Join(m, ", ")))
		}
	}
	return violations(details, fmt.Sprintf("%d accounts complete", len(accts)), "incomplete accounts")
}

func partyDetails(kind, id string, idx int, cs saft.CompanyStructure) []string {
	var details []string
	if m := missing("RegistrationNumber", cs.RegistrationNumber, "Name", cs.Name, "City", cs.Address.City, "Country", cs.Address.Country); len(m) > 0 {
		details = append(details, fmt.Sprintf("%s %d (%s): missing %s", kind, idx+1, id, strings.Join(m, ", ")))
	}
	if cs.RegistrationNumber != "" && id != "" && cs.RegistrationNumber != id {
		details = append(details, fmt.Sprintf("%s %d: registration number %s does not match ID %s", kind, idx+1, cs.RegistrationNumber, id))
	}
	return details
}

func checkCustomers(st *state) report.Result {
	m := st.doc.MasterFiles.Customers
	if m == nil || len(m.Customer) == 0 {
		return pass("no customers declared")
	}
	var details []string
	for i, c := range m.Customer {
		details = append(details, partyDetails("customer", c.CustomerID, i, c.CompanyStructure)...)
	}
	return violations(details, fmt.Sprintf("%d customers complete", len(m.Customer)), "customer problems")
}

func checkSuppliers(st *state) report.Result {
	m := st.doc.MasterFiles.Suppliers
	if m == nil || len(m.Supplier) == 0 {
		return warn(nil, "no suppliers declared")
	}
	var details []string
	for i, s := range m.Supplier {
		details = append(details, partyDetails("supplier", s.SupplierID, i, s.CompanyStructure)...)
	}
	return violations(details, fmt.Sprintf("%d suppliers complete", len(m.Supplier)), "supplier problems")
}

func checkTaxTable(st *state) report.Result {
	t := st.doc.MasterFiles.TaxTable
	if t == nil || len(t.TaxTableEntry) == 0 {
		return pass("no tax table entries declared")
	}
	var details []string
	for i, e := range t.TaxTableEntry {
		if m := missing("TaxType", e.TaxType, "Description", e.Description, "TaxCode", e.TaxCode, "Country", e.Country); len(m) > 0 {
			details = append(details, fmt.Sprintf("entry %d (%s): missing %s", i+1, e.TaxCode, strings.Join(m, ", ")))
		}
	}
	return violations(details, fmt.Sprintf("%d tax table entries complete", len(t.TaxTableEntry)), "incomplete tax table entries")
}

func checkProducts(st *state) report.Result {
	p := st.doc.MasterFiles.Products
	if p == nil || len(p.Product) == 0 {
		return warn(nil, "no products declared")
	}
	var details []string
	for i, prod := range p.Product {
		if m := missing("ProductCode", prod.ProductCode, "Description", prod.Description); len(m) > 0 {
			details = append(details, fmt.Sprintf("product %d: missing %s", i+1, strings.Join(m, ", ")))
		}
	}
	return violations(details, fmt.Sprintf("%d products complete", len(p.Product)), "incomplete products")
}

func checkAnalysisTypes(st *state) report.Result {
	a := st.doc.MasterFiles.AnalysisTypeTable
	if a == nil || len(a.AnalysisTypeTableEntry) == 0 {
		return warn(nil, "no analysis types declared")
	}
	var details []string
	for i, e := range a.AnalysisTypeTableEntry {
		m := missing("AnalysisType", e.AnalysisType, "AnalysisTypeDescription", e.AnalysisTypeDescription,
			"AnalysisID", e.AnalysisID, "AnalysisIDDescription", e.AnalysisIDDescription)
		if len(m) > 0 {
			details = append(details, fmt.Sprintf("analysis type %d: missing %s", i+1, strings.Join(m, ", ")))
		}
	}
	return violations(details, fmt.Sprintf("%d analysis types complete", len(a.AnalysisTypeTableEntry)), "incomplete analysis types")
}

func checkUOM(st *state) report.Result {
	u := st.doc.MasterFiles.UOMTable
	if u == nil || len(u.UOMTableEntry) == 0 {
		return warn(nil, "no units of measure declared")
	}
	var details []string
	for i, e := range u.UOMTableEntry {
		if m := missing("UnitOfMeasure", e.UnitOfMeasure, "Description", e.Description); len(m) > 0 {
			details = append(details, fmt.Sprintf("unit %d: missing %s", i+1, strings.Join(m, ", ")))
		}
	}
	return violations(details, fmt.Sprintf("%d units of measure complete", len(u.UOMTableEntry)), "incomplete units of measure")
}

// balanceSums totals debit and credit balances over accounts whose code
// does not start with 8 or 9 (off-balance-sheet classes).
func balanceSums(accts []saft.Account, debit, credit func(saft.Account) string) (decimal.Decimal, decimal.Decimal) {
	d, c := decimal.Zero, decimal.Zero
	for _, a := range accts {
		if strings.HasPrefix(a.AccountID, "8") || strings.HasPrefix(a.AccountID, "9") {
			continue
		}
		d = d.Add(amount(debit(a)))
		c = c.Add(amount(credit(a)))
	}
	return d, c
}

func balanceResult(kind string, d, c decimal.Decimal) report.Result {
	if !within(d, c, balanceTolerance) {
		return fail(nil, "%s debit %s != credit %s (difference %s)", kind, saft.Amount(d), saft.Amount(c), saft.Amount(d.Sub(c).Abs()))
	}
	return pass("%s debit %s = credit %s", kind, saft.Amount(d), saft.Amount(c))
}

func checkOpeningBalance(st *state) report.Result {
	d, c := balanceSums(st.accounts(),
		func(a saft.Account) string { return a.OpeningDebitBalance },
		func(a saft.Account) string { return a.OpeningCreditBalance })
	return balanceResult("opening", d, c)
}

func checkClosingBalance(st *state) report.Result {
	d, c := balanceSums(st.accounts(),
		func(a saft.Account) string { return a.ClosingDebitBalance },
		func(a saft.Account) string { return a.ClosingCreditBalance })
	return balanceResult("closing", d, c)
}

func checkTransactionBalance(st *state) report.Result {
	var details []string
	for _, txn := range st.txns {
		d, c := decimal.Zero, decimal.Zero
		for _, l := range txn.Lines {
			d = d.Add(money(l.DebitAmount))
			c = c.Add(money(l.CreditAmount))
		}
		if !within(d, c, balanceTolerance) {
			details = append(details, fmt.Sprintf("%s: debit %s, credit %s", txn.TransactionID, saft.Amount(d), saft.Amount(c)))
		}
	}
	return violations(details, fmt.Sprintf("%d transactions balanced", len(st.txns)), "unbalanced transactions")
}

func checkPartyReferences(st *state) report.Result {
	var details []string
	ref := func(where, customer, supplier string) {
		if customer != "" && !st.customerIDs[customer] {
			details = append(details, fmt.Sprintf("%s: unknown CustomerID %s", where, customer))
		}
		if supplier != "" && !st.supplierIDs[supplier] {
			details = append(details, fmt.Sprintf("%s: unknown SupplierID %s", where, supplier))
		}
	}
	for _, txn := range st.txns {
		ref(txn.TransactionID, txn.CustomerID, txn.SupplierID)
		for _, l := range txn.Lines {
			ref(l.RecordID, l.CustomerID, l.SupplierID)
		}
	}
	return violations(details, "all customer and supplier references resolve", "unresolved party references")
}

func checkAggregateBalance(st *state) report.Result {
	d, c := decimal.Zero, decimal.Zero
	for _, mv := range st.moves {
		d = d.Add(mv.debit)
		c = c.Add(mv.credit)
	}
	return balanceResult("journal", d, c)
}

func checkAccountReferences(st *state) report.Result {
	var details []string
	for _, txn := range st.txns {
		for _, l := range txn.Lines {
			if !st.accountIDs[l.AccountID] {
				details = append(details, fmt.Sprintf("%s: unknown AccountID %q", l.RecordID, l.AccountID))
			}
		}
	}
	return violations(details, "all account references resolve", "unresolved account references")
}

func checkDateRange(st *state) report.Result {
	sc := st.doc.Header.SelectionCriteria
	start, err1 := time.Parse(saft.DateLayout, sc.SelectionStartDate)
	end, err2 := time.Parse(saft.DateLayout, sc.SelectionEndDate)
	if err1 != nil || err2 != nil {
		return fail(nil, "selection criteria dates missing or invalid")
	}
	var details []string
	for _, txn := range st.txns {
		d, err := time.Parse(saft.DateLayout, txn.TransactionDate)
		if err != nil {
			details = append(details, fmt.Sprintf("%s: invalid date %q", txn.TransactionID, txn.TransactionDate))
			continue
		}
		if d.Before(start) || d.After(end) {
			details = append(details, fmt.Sprintf("%s: %s outside %s..%s", txn.TransactionID, txn.TransactionDate, sc.SelectionStartDate, sc.SelectionEndDate))
		}
	}
	return violations(details, fmt.Sprintf("all transactions within %s..%s", sc.SelectionStartDate, sc.SelectionEndDate), "transactions outside period")
}

// taxLines calls fn for every line-level TaxInformation in the journal and
// the sales invoices.
func (st *state) taxLines(fn func(where string, t *saft.TaxInformation)) {
	for _, txn := range st.txns {
		for _, l := range txn.Lines {
			if l.TaxInformation != nil {
				fn(l.RecordID, l.TaxInformation)
			}
		}
	}
	for _, inv := range st.salesInvoices() {
		for _, l := range inv.Line {
			if l.TaxInformation != nil {
				fn(fmt.Sprintf("invoice %s line %s", inv.InvoiceNo, l.LineNumber), l.TaxInformation)
			}
		}
	}
}

func checkTaxCodeReferences(st *state) report.Result {
	var details []string
	st.taxLines(func(where string, t *saft.TaxInformation) {
		if !st.taxCodes[t.TaxCode] {
			details = append(details, fmt.Sprintf("%s: unknown TaxCode %q", where, t.TaxCode))
		}
	})
	return violations(details, "all tax codes resolve", "unresolved tax codes")
}

func checkLineCompleteness(st *state) report.Result {
	var details []string
	for _, txn := range st.txns {
		for i, l := range txn.Lines {
			m := missing("RecordID", l.RecordID, "AccountID", l.AccountID)
			if l.DebitAmount == nil && l.CreditAmount == nil {
				m = append(m, "DebitAmount or CreditAmount")
			}
			if len(m) > 0 {
				details = append(details, fmt.Sprintf("%s line %d: missing %s", txn.TransactionID, i+1, strings.Join(m, ", ")))
			}
		}
	}
	return violations(details, "all lines complete", "incomplete lines")
}

func checkJournals(st *state) report.Result {
	journals := st.doc.GeneralLedgerEntries.Journal
	var details []string
	for i, j := range journals {
		if m := missing("JournalID", j.JournalID, "Description", j.Description); len(m) > 0 {
			details = append(details, fmt.Sprintf("journal %d: missing %s", i+1, strings.Join(m, ", ")))
		}
	}
	return violations(details, fmt.Sprintf("%d journals consistent", len(journals)), "inconsistent journals")
}

func checkHeaderCompleteness(st *state) report.Result {
	h := st.doc.Header
	m := missing(
		"AuditFileVersion", h.AuditFileVersion,
		"RegistrationNumber", h.Company.RegistrationNumber,
		"TaxRegistrationNumber", h.Company.TaxRegistration.TaxRegistrationNumber,
		"TaxAccountingBasis", h.TaxAccountingBasis,
		"Name", h.Company.Name,
		"BusinessName", h.Company.BusinessName,
	)
	if len(m) > 0 {
		return fail(m, "header is missing %s", strings.Join(m, ", "))
	}
	return pass("header complete")
}

func checkCurrency(st *state) report.Result {
	header := st.doc.Header.DefaultCurrencyCode
	var details []string
	for _, txn := range st.txns {
		for _, l := range txn.Lines {
			for _, m := range []*saft.Money{l.DebitAmount, l.CreditAmount} {
				if m == nil || m.CurrencyCode == "" || m.CurrencyCode == header || m.CurrencyCode == baseCurrency {
					continue
				}
				details = append(details, fmt.Sprintf("%s: currency %s, header %s", l.RecordID, m.CurrencyCode, header))
			}
		}
	}
	return violations(details, "line currencies consistent", "foreign line currencies")
}

func checkTaxAmounts(st *state) report.Result {
	var details []string
	n := 0
	st.taxLines(func(where string, t *saft.TaxInformation) {
		n++
		want := amount(t.TaxBase).Mul(amount(t.TaxPercentage)).Div(hundred)
		got := amount(t.TaxAmount.Amount)
		if !within(want, got, taxTolerance) {
			details = append(details, fmt.Sprintf("%s: %s × %s%% = %s, declared %s", where, t.TaxBase, t.TaxPercentage, want.StringFixed(2), t.TaxAmount.Amount))
		}
	})
	return violations(details, fmt.Sprintf("%d tax amounts recomputed", n), "tax amounts differ")
}

func checkSourceLinks(st *state) report.Result {
	var details []string
	for _, txn := range st.txns {
		for _, l := range txn.Lines {
			if (l.DebitAmount != nil || l.CreditAmount != nil) && l.SourceDocumentID == "" {
				details = append(details, fmt.Sprintf("%s: no SourceDocumentID", l.RecordID))
			}
		}
	}
	if len(details) > 0 {
		return warn(details, "lines without a source document (%d)", len(details))
	}
	return pass("all monetary lines reference a source document")
}

func checkBalanceFormula(st *state) report.Result {
	var details []string
	accts := st.accounts()
	for _, a := range accts {
		mv := st.moves[a.AccountID]
		if mv == nil {
			mv = &movement{}
		}
		net := amount(a.OpeningDebitBalance).Add(mv.debit).Sub(amount(a.OpeningCreditBalance)).Sub(mv.credit)
		wantDebit, wantCredit := decimal.Zero, decimal.Zero
		if net.IsNegative() {
			wantCredit = net.Neg()
		} else {
			wantDebit = net
		}
		gotDebit, gotCredit := amount(a.ClosingDebitBalance), amount(a.ClosingCreditBalance)
		if !within(wantDebit, gotDebit, formulaTolerance) || !within(wantCredit, gotCredit, formulaTolerance) {
			details = append(details, fmt.Sprintf("%s: expected closing D %s / C %s, declared D %s / C %s",
				a.AccountID, saft.Amount(wantDebit), saft.Amount(wantCredit), saft.Amount(gotDebit), saft.Amount(gotCredit)))
		}
	}
	return violations(details, fmt.Sprintf("%d account balances reconcile", len(accts)), "closing balances do not reconcile")
}

func checkEntryCount(st *state) report.Result {
	declared := st.doc.GeneralLedgerEntries.NumberOfEntries
	n, err := strconv.Atoi(declared)
	if err != nil {
		return fail(nil, "NumberOfEntries %q is not a number", declared)
	}
	if n != len(st.txns) {
		return fail(nil, "NumberOfEntries declares %d, document has %d transactions", n, len(st.txns))
	}
	return pass("%d transactions declared and present", n)
}

func checkStructure(st *state) report.Result {
	errs := Structure(st.raw, st.doc)
	if len(errs) == 0 {
		return pass("document conforms to the schema contract")
	}
	details := make([]string, len(errs))
	for i, e := range errs {
		details[i] = e.String()
	}
	return fail(details, "schema violations (%d)", len(errs))
}
