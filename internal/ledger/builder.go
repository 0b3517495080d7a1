// Package ledger turns a tenant snapshot into an audit-file document: one
// balanced transaction per sales invoice plus the master data it references.
package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/saft/internal/accounts"
	"github.com/cleared-dev/saft/internal/config"
	"github.com/cleared-dev/saft/internal/id"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/saft"
)

// storedTotalTolerance is how far a stored invoice total may drift from the
// total recomputed from its lines before a warning is logged.
var storedTotalTolerance = decimal.RequireFromString("0.02")

// Builder builds audit-file documents. The zero value is not usable; see NewBuilder.
type Builder struct {
	Accounts  config.AccountCodes
	Journal   config.JournalSettings
	Software  config.SoftwareConfig
	AuditFile config.AuditFileConfig
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewBuilder returns a Builder configured from cfg.
func NewBuilder(cfg *config.Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		Accounts:  cfg.Accounts,
		Journal:   cfg.Journal,
		Software:  cfg.Software,
		AuditFile: cfg.AuditFile,
		Logger:    logger,
		Now:       time.Now,
	}
}

// posting is one invoice with the totals that go to the ledger.
type posting struct {
	invoice  model.Invoice
	lines    []model.InvoiceLine
	customer string
	net      decimal.Decimal
	tax      decimal.Decimal
	gross    decimal.Decimal
	taxEntry *model.TaxEntry
}

// movement accumulates period debits and credits for one account.
type movement struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

// Build produces the document for invoices issued in [from, to], both ends
// inclusive. It fails with *MissingMasterAccountError before doing any other
// work if the receivables, revenue or VAT-payable account is absent.
func (b *Builder) Build(snap model.Snapshot, from, to time.Time) (*saft.AuditFile, error) {
	chart := accounts.NewService(snap.Accounts)
	if missing := chart.Missing(b.Accounts.Required()...); len(missing) > 0 {
		return nil, &MissingMasterAccountError{Codes: missing}
	}

	log := b.logger().With(zap.String("tenant", snap.TenantID))
	currency := b.currency(snap.Company)

	postings := b.postings(snap, from, to, log)

	moves := make(map[string]*movement)
	journal := saft.Journal{
		JournalID:   b.Journal.ID,
		Description: b.Journal.Description,
		Type:        b.Journal.Type,
	}
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	seqs := make(map[string]int)
	for _, p := range postings {
		date := p.invoice.IssueDate
		period := fmt.Sprintf("%04d-%02d", date.Year(), int(date.Month()))
		seqs[period]++
		txn := b.transaction(p, id.FormatTransactionID(date.Year(), int(date.Month()), seqs[period]), currency)

		for _, l := range txn.Lines {
			m := moves[l.AccountID]
			if m == nil {
				m = &movement{}
				moves[l.AccountID] = m
			}
			if l.DebitAmount != nil {
				d := decimal.RequireFromString(l.DebitAmount.Amount)
				m.debit = m.debit.Add(d)
				totalDebit = totalDebit.Add(d)
			}
			if l.CreditAmount != nil {
				c := decimal.RequireFromString(l.CreditAmount.Amount)
				m.credit = m.credit.Add(c)
				totalCredit = totalCredit.Add(c)
			}
		}
		journal.Transaction = append(journal.Transaction, txn)
	}

	uoms, prods := products(postings)
	doc := &saft.AuditFile{
		Header: b.header(snap.Company, currency, from, to),
		MasterFiles: saft.MasterFiles{
			GeneralLedgerAccounts: b.generalLedgerAccounts(snap.Accounts, moves),
			Customers:             b.customers(snap.Parties),
			Suppliers:             suppliers(snap.Parties),
			TaxTable:              b.taxTable(snap.TaxTable),
			UOMTable:              uoms,
			Products:              prods,
		},
		SourceDocuments: &saft.SourceDocuments{SalesInvoices: salesInvoices(postings, snap.TaxTable)},
		GeneralLedgerEntries: saft.GeneralLedgerEntries{
			NumberOfEntries: strconv.Itoa(len(journal.Transaction)),
			TotalDebit:      saft.Amount(totalDebit),
			TotalCredit:     saft.Amount(totalCredit),
			Journal:         []saft.Journal{journal},
		},
	}
	log.Info("built audit file",
		zap.Int("invoices", len(postings)),
		zap.String("total_debit", saft.Amount(totalDebit)),
		zap.String("total_credit", saft.Amount(totalCredit)),
	)
	return doc, nil
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *Builder) currency(c model.Company) string {
	if c.Currency != "" {
		return c.Currency
	}
	return b.AuditFile.Currency
}

// postings selects, orders and prices the invoices in the period.
func (b *Builder) postings(snap model.Snapshot, from, to time.Time, log *zap.Logger) []posting {
	first, last := day(from), day(to)
	seen := make(map[string]bool)
	var selected []model.Invoice
	for _, inv := range snap.Invoices {
		d := day(inv.IssueDate)
		if d.Before(first) || d.After(last) {
			continue
		}
		if seen[inv.ID] {
			log.Warn("duplicate invoice ignored", zap.String("invoice_id", inv.ID), zap.String("number", inv.Number))
			continue
		}
		seen[inv.ID] = true
		selected = append(selected, inv)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		di, dj := day(selected[i].IssueDate), day(selected[j].IssueDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return selected[i].Number < selected[j].Number
	})

	parties := make(map[string]model.Party, len(snap.Parties))
	for _, p := range snap.Parties {
		parties[p.ID] = p
	}
	lines := snap.LinesByInvoice()

	out := make([]posting, 0, len(selected))
	for _, inv := range selected {
		p := posting{invoice: inv, lines: lines[inv.ID], customer: inv.CustomerID}
		if party, ok := parties[inv.CustomerID]; ok {
			p.customer = party.Ref()
		} else {
			log.Warn("invoice customer not in parties", zap.String("number", inv.Number), zap.String("customer_id", inv.CustomerID))
		}

		if len(p.lines) > 0 {
			t := model.ComputeTotals(p.lines)
			p.net, p.tax = t.Subtotal, t.VAT
			if !inv.Total.IsZero() && inv.Total.Sub(t.Total).Abs().GreaterThan(storedTotalTolerance) {
				log.Warn("stored invoice total differs from line items",
					zap.String("number", inv.Number),
					zap.String("stored", saft.Amount(inv.Total)),
					zap.String("computed", saft.Amount(t.Total)),
				)
			}
			p.taxEntry = singleRateEntry(p.lines, snap.TaxTable)
		} else {
			p.net, p.tax = inv.Subtotal, inv.VATAmount
		}
		p.gross = p.net.Add(p.tax)
		out = append(out, p)
	}
	return out
}

// transaction posts one invoice: receivables debited with the gross amount,
// revenue and VAT payable credited. Negative amounts (credit notes) swap sides.
func (b *Builder) transaction(p posting, txnID, currency string) saft.Transaction {
	inv := p.invoice
	desc := fmt.Sprintf("Factura %s", inv.Number)
	date := saft.Date(inv.IssueDate)

	txn := saft.Transaction{
		TransactionID:   txnID,
		Period:          strconv.Itoa(int(inv.IssueDate.Month())),
		PeriodYear:      strconv.Itoa(inv.IssueDate.Year()),
		TransactionDate: date,
		Description:     desc,
		GLPostingDate:   date,
		CustomerID:      p.customer,
	}

	add := func(account string, amount decimal.Decimal, debit bool) *saft.Line {
		line := saft.Line{
			RecordID:         id.FormatRecordID(txnID, len(txn.Lines)),
			AccountID:        account,
			SourceDocumentID: inv.Number,
			Description:      desc,
		}
		if amount.IsNegative() {
			amount, debit = amount.Neg(), !debit
		}
		m := &saft.Money{Amount: saft.Amount(amount), CurrencyCode: currency}
		if debit {
			line.DebitAmount = m
		} else {
			line.CreditAmount = m
		}
		txn.Lines = append(txn.Lines, line)
		return &txn.Lines[len(txn.Lines)-1]
	}

	recv := add(b.Accounts.Receivables, p.gross, true)
	recv.CustomerID = p.customer
	add(b.Accounts.Revenue, p.net, false)
	if !p.tax.IsZero() {
		vat := add(b.Accounts.VATPayable, p.tax, false)
		if p.taxEntry != nil {
			vat.TaxInformation = &saft.TaxInformation{
				TaxType:       p.taxEntry.TaxType,
				TaxCode:       p.taxEntry.TaxCode,
				TaxPercentage: saft.Amount(p.taxEntry.Percentage),
				TaxBase:       saft.Amount(p.net.Abs()),
				TaxAmount:     saft.Money{Amount: saft.Amount(p.tax.Abs()), CurrencyCode: currency},
			}
		}
	}
	return txn
}

func (b *Builder) header(c model.Company, currency string, from, to time.Time) saft.Header {
	businessName := c.BusinessName
	if businessName == "" {
		businessName = c.Name
	}
	return saft.Header{
		AuditFileVersion:     b.AuditFile.Version,
		AuditFileCountry:     b.AuditFile.Country,
		AuditFileDateCreated: saft.Date(b.now()),
		SoftwareCompanyName:  b.Software.CompanyName,
		SoftwareID:           b.Software.ID,
		SoftwareVersion:      b.Software.Version,
		Company: saft.Company{
			RegistrationNumber: c.RegistrationNumber,
			Name:               c.Name,
			BusinessName:       businessName,
			Address: saft.Address{
				StreetName: c.Street,
				City:       c.City,
				PostalCode: c.PostalCode,
				Country:    c.Country,
			},
			Contact: saft.Contact{
				ContactPerson: saft.ContactPerson{FirstName: c.ContactFirstName, LastName: c.ContactLastName},
				Telephone:     c.Telephone,
				Email:         c.Email,
			},
			TaxRegistration: saft.TaxRegistration{TaxRegistrationNumber: c.TaxRegistrationNumber},
			BankAccount: saft.BankAccount{
				IBANNumber:        c.IBAN,
				BankAccountNumber: c.BankAccountNumber,
				BankAccountName:   c.BankAccountName,
				SortCode:          c.SortCode,
			},
		},
		DefaultCurrencyCode: currency,
		SelectionCriteria: saft.SelectionCriteria{
			SelectionStartDate: saft.Date(from),
			SelectionEndDate:   saft.Date(to),
		},
		TaxAccountingBasis: b.AuditFile.TaxAccountingBasis,
	}
}

// singleRateEntry returns the tax-table entry for the lines' VAT rate when
// every line carries the same rate and the table has an entry for it.
func singleRateEntry(lines []model.InvoiceLine, table []model.TaxEntry) *model.TaxEntry {
	rate := lines[0].VATRate
	for _, l := range lines[1:] {
		if !l.VATRate.Equal(rate) {
			return nil
		}
	}
	return lookupRate(table, rate)
}

func lookupRate(table []model.TaxEntry, rate decimal.Decimal) *model.TaxEntry {
	for i := range table {
		if table[i].Percentage.Equal(rate) {
			return &table[i]
		}
	}
	return nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
