package ledger

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/id"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/saft"
)

// DefaultUnit is the unit of measure used for lines without one.
const DefaultUnit = "BUC"

// SAF-T account type codes used for the chart of accounts.
const (
	accountTypeGeneral     = "GL"
	accountTypeReceivables = "AR"
	accountTypeRevenue     = "OR"
	accountTypeExpense     = "OC"
)

func (b *Builder) accountType(a model.Account) string {
	switch {
	case a.Code == b.Accounts.Receivables:
		return accountTypeReceivables
	case a.Type == model.AccountTypeRevenue:
		return accountTypeRevenue
	case a.Type == model.AccountTypeExpense:
		return accountTypeExpense
	default:
		return accountTypeGeneral
	}
}

// generalLedgerAccounts lists the chart with closing balances recomputed from
// the opening balance and the period's movement.
func (b *Builder) generalLedgerAccounts(accts []model.Account, moves map[string]*movement) *saft.GeneralLedgerAccounts {
	out := &saft.GeneralLedgerAccounts{}
	for _, a := range accts {
		m := moves[a.Code]
		if m == nil {
			m = &movement{}
		}
		closingDebit, closingCredit := closing(a.OpeningDebit, a.OpeningCredit, m.debit, m.credit)
		out.Account = append(out.Account, saft.Account{
			AccountID:            a.Code,
			AccountDescription:   a.Name,
			AccountType:          b.accountType(a),
			OpeningDebitBalance:  saft.Amount(a.OpeningDebit),
			OpeningCreditBalance: saft.Amount(a.OpeningCredit),
			ClosingDebitBalance:  saft.Amount(closingDebit),
			ClosingCreditBalance: saft.Amount(closingCredit),
		})
	}
	return out
}

// closing nets opening and movement and puts the result in the debit or
// credit bucket depending on its sign.
func closing(openDebit, openCredit, moveDebit, moveCredit decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	net := openDebit.Add(moveDebit).Sub(openCredit).Sub(moveCredit)
	if net.IsNegative() {
		return decimal.Zero, net.Neg()
	}
	return net, decimal.Zero
}

func (b *Builder) customers(parties []model.Party) *saft.Customers {
	var out []saft.Customer
	for _, p := range parties {
		if p.Kind != model.PartyCustomer {
			continue
		}
		out = append(out, saft.Customer{
			CompanyStructure: companyStructure(p),
			CustomerID:       p.Ref(),
			AccountID:        b.Accounts.Receivables,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return &saft.Customers{Customer: out}
}

func suppliers(parties []model.Party) *saft.Suppliers {
	var out []saft.Supplier
	for _, p := range parties {
		if p.Kind != model.PartySupplier {
			continue
		}
		out = append(out, saft.Supplier{
			CompanyStructure: companyStructure(p),
			SupplierID:       p.Ref(),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return &saft.Suppliers{Supplier: out}
}

func companyStructure(p model.Party) saft.CompanyStructure {
	return saft.CompanyStructure{
		RegistrationNumber: p.Ref(),
		Name:               p.LegalName,
		Address: saft.Address{
			StreetName: p.Address,
			City:       p.BillingCity,
			Country:    p.BillingCountry,
		},
	}
}

func (b *Builder) taxTable(entries []model.TaxEntry) *saft.TaxTable {
	if len(entries) == 0 {
		return nil
	}
	out := &saft.TaxTable{}
	for _, e := range entries {
		country := e.Country
		if country == "" {
			country = b.AuditFile.Country
		}
		out.TaxTableEntry = append(out.TaxTableEntry, saft.TaxTableEntry{
			TaxType:       e.TaxType,
			Description:   e.Description,
			TaxCode:       e.TaxCode,
			TaxPercentage: saft.Amount(e.Percentage),
			Country:       country,
		})
	}
	return out
}

// products derives the product and unit-of-measure tables from the lines of
// the selected invoices. Lines without a product code get a generated one,
// shared by lines with the same description.
func products(postings []posting) (*saft.UOMTable, *saft.Products) {
	var prods []saft.Product
	var units []saft.UOMTableEntry
	seenCode := make(map[string]bool)
	seenUnit := make(map[string]bool)
	derived := make(map[string]string)

	for i := range postings {
		for j := range postings[i].lines {
			l := &postings[i].lines[j]
			if l.ProductCode == "" {
				code, ok := derived[l.Description]
				if !ok {
					code = id.FormatProductCode(len(derived) + 1)
					derived[l.Description] = code
				}
				l.ProductCode = code
			}
			unit := l.Unit
			if unit == "" {
				unit = DefaultUnit
			}
			if !seenUnit[unit] {
				seenUnit[unit] = true
				units = append(units, saft.UOMTableEntry{UnitOfMeasure: unit, Description: unit})
			}
			if !seenCode[l.ProductCode] {
				seenCode[l.ProductCode] = true
				desc := l.Description
				if desc == "" {
					desc = l.ProductCode
				}
				prods = append(prods, saft.Product{ProductCode: l.ProductCode, Description: desc, UOMBase: unit})
			}
		}
	}
	if len(prods) == 0 {
		return nil, nil
	}
	return &saft.UOMTable{UOMTableEntry: units}, &saft.Products{Product: prods}
}

// salesInvoices renders the selected invoices as source documents. It must
// run after products so derived product codes are filled in.
func salesInvoices(postings []posting, table []model.TaxEntry) *saft.SalesInvoices {
	out := &saft.SalesInvoices{}
	debit, credit := decimal.Zero, decimal.Zero
	for _, p := range postings {
		inv := p.invoice
		typ := string(inv.Type)
		if typ == "" {
			typ = string(model.InvoiceTypeInvoice)
		}
		doc := saft.Invoice{
			InvoiceNo:    inv.Number,
			CustomerInfo: saft.CustomerInfo{CustomerID: p.customer},
			InvoiceDate:  saft.Date(inv.IssueDate),
			InvoiceType:  typ,
			DocumentTotals: saft.DocumentTotals{
				TaxPayable: saft.Amount(p.tax),
				NetTotal:   saft.Amount(p.net),
				GrossTotal: saft.Amount(p.gross),
			},
		}
		for i, l := range p.lines {
			unit := l.Unit
			if unit == "" {
				unit = DefaultUnit
			}
			net := model.LineNet(l)
			indicator := "C"
			if net.IsNegative() {
				indicator = "D"
			}
			desc := l.Description
			if desc == "" {
				desc = l.ProductCode
			}
			line := saft.InvoiceLine{
				LineNumber:           strconv.Itoa(i + 1),
				ProductCode:          l.ProductCode,
				Description:          desc,
				Quantity:             l.Quantity.String(),
				UnitOfMeasure:        unit,
				UnitPrice:            l.UnitPrice.Round(4).String(),
				InvoiceLineAmount:    saft.Money{Amount: saft.Amount(net.Abs())},
				DebitCreditIndicator: indicator,
			}
			if entry := lookupRate(table, l.VATRate); entry != nil {
				line.TaxInformation = &saft.TaxInformation{
					TaxType:       entry.TaxType,
					TaxCode:       entry.TaxCode,
					TaxPercentage: saft.Amount(l.VATRate),
					TaxBase:       saft.Amount(net.Abs()),
					TaxAmount:     saft.Money{Amount: saft.Amount(model.LineVAT(l).Abs())},
				}
			}
			doc.Line = append(doc.Line, line)
		}
		if p.net.IsNegative() {
			debit = debit.Add(p.net.Neg())
		} else {
			credit = credit.Add(p.net)
		}
		out.Invoice = append(out.Invoice, doc)
	}
	out.NumberOfEntries = strconv.Itoa(len(out.Invoice))
	out.TotalDebit = saft.Amount(debit)
	out.TotalCredit = saft.Amount(credit)
	return out
}
