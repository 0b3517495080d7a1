package validate

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/saft"
)

// state is built once per run: index sets for reference checks and per-account
// movement accumulated in a single pass over the journal.
type state struct {
	raw  []byte
	doc  *saft.AuditFile
	txns []saft.Transaction

	accountIDs  map[string]bool
	customerIDs map[string]bool
	supplierIDs map[string]bool
	taxCodes    map[string]bool

	moves map[string]*movement
}

type movement struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

func newState(raw []byte, doc *saft.AuditFile) *state {
	st := &state{
		raw:         raw,
		doc:         doc,
		txns:        doc.Transactions(),
		accountIDs:  make(map[string]bool),
		customerIDs: make(map[string]bool),
		supplierIDs: make(map[string]bool),
		taxCodes:    make(map[string]bool),
		moves:       make(map[string]*movement),
	}

	m := doc.MasterFiles
	for _, a := range st.accounts() {
		st.accountIDs[a.AccountID] = true
	}
	if m.Customers != nil {
		for _, c := range m.Customers.Customer {
			st.customerIDs[c.CustomerID] = true
		}
	}
	if m.Suppliers != nil {
		for _, s := range m.Suppliers.Supplier {
			st.supplierIDs[s.SupplierID] = true
		}
	}
	if m.TaxTable != nil {
		for _, e := range m.TaxTable.TaxTableEntry {
			st.taxCodes[e.TaxCode] = true
		}
	}

	for _, txn := range st.txns {
		for _, l := range txn.Lines {
			mv := st.moves[l.AccountID]
			if mv == nil {
				mv = &movement{}
				st.moves[l.AccountID] = mv
			}
			mv.debit = mv.debit.Add(money(l.DebitAmount))
			mv.credit = mv.credit.Add(money(l.CreditAmount))
		}
	}
	return st
}

func (st *state) accounts() []saft.Account {
	if st.doc.MasterFiles.GeneralLedgerAccounts == nil {
		return nil
	}
	return st.doc.MasterFiles.GeneralLedgerAccounts.Account
}

func (st *state) salesInvoices() []saft.Invoice {
	sd := st.doc.SourceDocuments
	if sd == nil || sd.SalesInvoices == nil {
		return nil
	}
	return sd.SalesInvoices.Invoice
}

// amount parses a decimal leaf. Missing or malformed values count as zero;
// their format is reported by the structural check.
func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func money(m *saft.Money) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return amount(m.Amount)
}

func within(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
