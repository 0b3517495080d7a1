package accounts

import "github.com/cleared-dev/saft/internal/model"

// Standard account codes of the Romanian general chart of accounts used by
// the invoice-to-ledger posting.
const (
	CodeReceivables = "4111"
	CodeRevenue     = "707"
	CodeVATPayable  = "4427"
)

// DefaultChart returns the starter chart of accounts for a new tenant.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: "1012", Code: "1012", Name: "Capital subscris varsat", Type: model.AccountTypeEquity},
		{ID: "121", Code: "121", Name: "Profit sau pierdere", Type: model.AccountTypeEquity},
		{ID: "401", Code: "401", Name: "Furnizori", Type: model.AccountTypeLiability},
		{ID: CodeReceivables, Code: CodeReceivables, Name: "Clienti", Type: model.AccountTypeAsset},
		{ID: "4426", Code: "4426", Name: "TVA deductibila", Type: model.AccountTypeAsset},
		{ID: CodeVATPayable, Code: CodeVATPayable, Name: "TVA colectata", Type: model.AccountTypeLiability},
		{ID: "5121", Code: "5121", Name: "Conturi la banci in lei", Type: model.AccountTypeAsset},
		{ID: "5311", Code: "5311", Name: "Casa in lei", Type: model.AccountTypeAsset},
		{ID: "628", Code: "628", Name: "Alte cheltuieli cu serviciile executate de terti", Type: model.AccountTypeExpense},
		{ID: "704", Code: "704", Name: "Venituri din servicii prestate", Type: model.AccountTypeRevenue},
		{ID: CodeRevenue, Code: CodeRevenue, Name: "Venituri din vanzarea marfurilor", Type: model.AccountTypeRevenue},
	}
}
