package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/cleared-dev/saft/internal/saft"
)

// XSDValidationError is one schema-level violation. Path is a breadcrumb to
// the parent node, e.g. "GeneralLedgerEntries/Journal[1]/Transaction[2]/Lines/Line[1]".
type XSDValidationError struct {
	Element string `json:"element"`
	Error   string `json:"error"`
	Path    string `json:"path"`
}

func (e XSDValidationError) String() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Element, e.Error)
	}
	return fmt.Sprintf("%s/%s: %s", e.Path, e.Element, e.Error)
}

// Identifier length limits.
const (
	maxAccountIDLen  = 30
	maxCompanyIDLen  = 50
	maxCustomerIDLen = 30
	maxSupplierIDLen = 30
)

var (
	accountTypes = []string{"GL", "GR", "GM", "AR", "AP", "AA", "OR", "OC"}
	taxTypes     = []string{"IVA", "IS", "NS", "NA"}
	invoiceTypes = []string{"FT", "FS", "FR", "ND", "NC"}
	fileVersions = []string{"1.0", "1.01_01"}

	dateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	amountRe = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)
	priceRe  = regexp.MustCompile(`^-?\d+(\.\d{1,4})?$`)
	countRe  = regexp.MustCompile(`^\d+$`)
)

// Structure checks the shape of a parsed document: root element, section
// order, required elements, enumerations, date and decimal formats and
// identifier lengths. raw is the text doc was parsed from.
func Structure(raw []byte, doc *saft.AuditFile) []XSDValidationError {
	w := &walker{}
	w.root(raw, doc)
	w.header(doc.Header)
	w.masterFiles(doc.MasterFiles)
	if doc.SourceDocuments != nil && doc.SourceDocuments.SalesInvoices != nil {
		w.salesInvoices(doc.SourceDocuments.SalesInvoices)
	}
	w.generalLedger(doc.GeneralLedgerEntries)
	return w.errs
}

type walker struct {
	errs []XSDValidationError
}

func (w *walker) add(path, element, format string, args ...any) {
	w.errs = append(w.errs, XSDValidationError{Element: element, Error: fmt.Sprintf(format, args...), Path: path})
}

func (w *walker) required(path, element, value string) bool {
	if value == "" {
		w.add(path, element, "required element missing or empty")
		return false
	}
	return true
}

func (w *walker) enum(path, element, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	w.add(path, element, "value %q not in %v", value, allowed)
}

func (w *walker) date(path, element, value string) {
	if value == "" {
		return
	}
	if !dateRe.MatchString(value) {
		w.add(path, element, "date %q is not YYYY-MM-DD", value)
		return
	}
	if _, err := time.Parse(saft.DateLayout, value); err != nil {
		w.add(path, element, "date %q is not a calendar date", value)
	}
}

func (w *walker) amount(path, element, value string) {
	if value != "" && !amountRe.MatchString(value) {
		w.add(path, element, "decimal %q must have at most 2 fractional digits", value)
	}
}

func (w *walker) price(path, element, value string) {
	if value != "" && !priceRe.MatchString(value) {
		w.add(path, element, "decimal %q must have at most 4 fractional digits", value)
	}
}

func (w *walker) count(path, element, value string) {
	if value != "" && !countRe.MatchString(value) {
		w.add(path, element, "%q is not a non-negative integer", value)
	}
}

func (w *walker) maxLen(path, element, value string, n int) {
	if len(value) > n {
		w.add(path, element, "length %d exceeds %d", len(value), n)
	}
}

func (w *walker) root(raw []byte, doc *saft.AuditFile) {
	if doc.XMLName.Local != saft.RootElement {
		w.add("", doc.XMLName.Local, "root element must be %s", saft.RootElement)
	}
	if doc.XMLName.Space != saft.Namespace {
		w.add("", saft.RootElement, "namespace %q, want %q", doc.XMLName.Space, saft.Namespace)
	}

	order, err := saft.TopLevelOrder(raw)
	if err != nil {
		w.add("", saft.RootElement, "%v", err)
		return
	}
	rank := make(map[string]int, len(saft.TopLevelSections))
	for i, s := range saft.TopLevelSections {
		rank[s] = i
	}
	seen := make(map[string]bool)
	last := -1
	for _, name := range order {
		r, ok := rank[name]
		if !ok {
			w.add(saft.RootElement, name, "unexpected top-level element")
			continue
		}
		if seen[name] {
			w.add(saft.RootElement, name, "duplicate top-level element")
			continue
		}
		seen[name] = true
		if r < last {
			w.add(saft.RootElement, name, "out of order; sections must be %v", saft.TopLevelSections)
		}
		last = r
	}
	for _, name := range []string{"Header", "MasterFiles", "GeneralLedgerEntries"} {
		if !seen[name] {
			w.add(saft.RootElement, name, "required element missing or empty")
		}
	}
}

func (w *walker) header(h saft.Header) {
	const p = "Header"
	if w.required(p, "AuditFileVersion", h.AuditFileVersion) {
		w.enum(p, "AuditFileVersion", h.AuditFileVersion, fileVersions)
	}
	w.required(p, "AuditFileCountry", h.AuditFileCountry)
	if w.required(p, "AuditFileDateCreated", h.AuditFileDateCreated) {
		w.date(p, "AuditFileDateCreated", h.AuditFileDateCreated)
	}
	w.required(p, "SoftwareID", h.SoftwareID)

	const cp = p + "/Company"
	if w.required(cp, "RegistrationNumber", h.Company.RegistrationNumber) {
		w.maxLen(cp, "RegistrationNumber", h.Company.RegistrationNumber, maxCompanyIDLen)
	}
	w.required(cp, "Name", h.Company.Name)

	w.required(p, "DefaultCurrencyCode", h.DefaultCurrencyCode)
	const sp = p + "/SelectionCriteria"
	if w.required(sp, "SelectionStartDate", h.SelectionCriteria.SelectionStartDate) {
		w.date(sp, "SelectionStartDate", h.SelectionCriteria.SelectionStartDate)
	}
	if w.required(sp, "SelectionEndDate", h.SelectionCriteria.SelectionEndDate) {
		w.date(sp, "SelectionEndDate", h.SelectionCriteria.SelectionEndDate)
	}
	w.required(p, "TaxAccountingBasis", h.TaxAccountingBasis)
}

func (w *walker) masterFiles(m saft.MasterFiles) {
	const p = "MasterFiles"
	if m.GeneralLedgerAccounts == nil || len(m.GeneralLedgerAccounts.Account) == 0 {
		w.add(p, "GeneralLedgerAccounts", "required element missing or empty")
	} else {
		for i, a := range m.GeneralLedgerAccounts.Account {
			ap := fmt.Sprintf("%s/GeneralLedgerAccounts/Account[%d]", p, i+1)
			if w.required(ap, "AccountID", a.AccountID) {
				w.maxLen(ap, "AccountID", a.AccountID, maxAccountIDLen)
			}
			if w.required(ap, "AccountType", a.AccountType) {
				w.enum(ap, "AccountType", a.AccountType, accountTypes)
			}
			w.amount(ap, "OpeningDebitBalance", a.OpeningDebitBalance)
			w.amount(ap, "OpeningCreditBalance", a.OpeningCreditBalance)
			w.amount(ap, "ClosingDebitBalance", a.ClosingDebitBalance)
			w.amount(ap, "ClosingCreditBalance", a.ClosingCreditBalance)
		}
	}

	if m.Customers != nil {
		for i, c := range m.Customers.Customer {
			cp := fmt.Sprintf("%s/Customers/Customer[%d]", p, i+1)
			if w.required(cp, "CustomerID", c.CustomerID) {
				w.maxLen(cp, "CustomerID", c.CustomerID, maxCustomerIDLen)
			}
		}
	}
	if m.Suppliers != nil {
		for i, s := range m.Suppliers.Supplier {
			sp := fmt.Sprintf("%s/Suppliers/Supplier[%d]", p, i+1)
			if w.required(sp, "SupplierID", s.SupplierID) {
				w.maxLen(sp, "SupplierID", s.SupplierID, maxSupplierIDLen)
			}
		}
	}
	if m.TaxTable != nil {
		for i, e := range m.TaxTable.TaxTableEntry {
			tp := fmt.Sprintf("%s/TaxTable/TaxTableEntry[%d]", p, i+1)
			if w.required(tp, "TaxType", e.TaxType) {
				w.enum(tp, "TaxType", e.TaxType, taxTypes)
			}
			w.required(tp, "TaxCode", e.TaxCode)
			w.amount(tp, "TaxPercentage", e.TaxPercentage)
		}
	}
}

func (w *walker) salesInvoices(s *saft.SalesInvoices) {
	const p = "SourceDocuments/SalesInvoices"
	w.count(p, "NumberOfEntries", s.NumberOfEntries)
	w.amount(p, "TotalDebit", s.TotalDebit)
	w.amount(p, "TotalCredit", s.TotalCredit)
	for i, inv := range s.Invoice {
		ip := fmt.Sprintf("%s/Invoice[%d]", p, i+1)
		w.required(ip, "InvoiceNo", inv.InvoiceNo)
		if w.required(ip+"/CustomerInfo", "CustomerID", inv.CustomerInfo.CustomerID) {
			w.maxLen(ip+"/CustomerInfo", "CustomerID", inv.CustomerInfo.CustomerID, maxCustomerIDLen)
		}
		if w.required(ip, "InvoiceDate", inv.InvoiceDate) {
			w.date(ip, "InvoiceDate", inv.InvoiceDate)
		}
		if w.required(ip, "InvoiceType", inv.InvoiceType) {
			w.enum(ip, "InvoiceType", inv.InvoiceType, invoiceTypes)
		}
		for j, l := range inv.Line {
			lp := fmt.Sprintf("%s/Line[%d]", ip, j+1)
			w.price(lp, "UnitPrice", l.UnitPrice)
			w.amount(lp+"/InvoiceLineAmount", "Amount", l.InvoiceLineAmount.Amount)
			w.taxInformation(lp, l.TaxInformation)
		}
		tp := ip + "/DocumentTotals"
		w.amount(tp, "TaxPayable", inv.DocumentTotals.TaxPayable)
		w.amount(tp, "NetTotal", inv.DocumentTotals.NetTotal)
		w.amount(tp, "GrossTotal", inv.DocumentTotals.GrossTotal)
	}
}

func (w *walker) generalLedger(g saft.GeneralLedgerEntries) {
	const p = "GeneralLedgerEntries"
	if w.required(p, "NumberOfEntries", g.NumberOfEntries) {
		w.count(p, "NumberOfEntries", g.NumberOfEntries)
	}
	w.amount(p, "TotalDebit", g.TotalDebit)
	w.amount(p, "TotalCredit", g.TotalCredit)

	for i, j := range g.Journal {
		jp := fmt.Sprintf("%s/Journal[%d]", p, i+1)
		for k, txn := range j.Transaction {
			tp := fmt.Sprintf("%s/Transaction[%d]", jp, k+1)
			w.required(tp, "TransactionID", txn.TransactionID)
			if w.required(tp, "TransactionDate", txn.TransactionDate) {
				w.date(tp, "TransactionDate", txn.TransactionDate)
			}
			w.date(tp, "GLPostingDate", txn.GLPostingDate)
			w.maxLen(tp, "CustomerID", txn.CustomerID, maxCustomerIDLen)
			w.maxLen(tp, "SupplierID", txn.SupplierID, maxSupplierIDLen)
			if txn.PeriodYear != "" {
				if _, err := strconv.Atoi(txn.PeriodYear); err != nil {
					w.add(tp, "PeriodYear", "%q is not a year", txn.PeriodYear)
				}
			}
			if len(txn.Lines) < 2 {
				w.add(tp, "Lines", "transaction has %d line(s); double entry needs at least 2", len(txn.Lines))
			}
			for n, l := range txn.Lines {
				w.line(fmt.Sprintf("%s/Lines/Line[%d]", tp, n+1), l)
			}
		}
	}
}

func (w *walker) line(p string, l saft.Line) {
	w.maxLen(p, "AccountID", l.AccountID, maxAccountIDLen)
	w.maxLen(p, "CustomerID", l.CustomerID, maxCustomerIDLen)
	w.maxLen(p, "SupplierID", l.SupplierID, maxSupplierIDLen)
	if l.DebitAmount != nil && l.CreditAmount != nil {
		w.add(p, "DebitAmount", "line carries both DebitAmount and CreditAmount")
	}
	if l.DebitAmount != nil {
		w.amount(p+"/DebitAmount", "Amount", l.DebitAmount.Amount)
	}
	if l.CreditAmount != nil {
		w.amount(p+"/CreditAmount", "Amount", l.CreditAmount.Amount)
	}
	w.taxInformation(p, l.TaxInformation)
}

func (w *walker) taxInformation(p string, t *saft.TaxInformation) {
	if t == nil {
		return
	}
	tp := p + "/TaxInformation"
	if w.required(tp, "TaxType", t.TaxType) {
		w.enum(tp, "TaxType", t.TaxType, taxTypes)
	}
	w.required(tp, "TaxCode", t.TaxCode)
	w.amount(tp, "TaxPercentage", t.TaxPercentage)
	w.amount(tp, "TaxBase", t.TaxBase)
	w.amount(tp+"/TaxAmount", "Amount", t.TaxAmount.Amount)
}
