package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
var Header = []string{"account_id", "code", "name", "type", "opening_debit", "opening_credit", "closing_debit", "closing_credit"}

const (
	numFields        = 8
	colID            = 0
	colCode          = 1
	colName          = 2
	colType          = 3
	colOpeningDebit  = 4
	colOpeningCredit = 5
	colClosingDebit  = 6
	colClosingCredit = 7
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row. Zero balances are left blank.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colOpeningDebit] = formatBalance(acct.OpeningDebit)
	row[colOpeningCredit] = formatBalance(acct.OpeningCredit)
	row[colClosingDebit] = formatBalance(acct.ClosingDebit)
	row[colClosingCredit] = formatBalance(acct.ClosingCredit)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	acct := model.Account{
		ID:   record[colID],
		Code: record[colCode],
		Name: record[colName],
		Type: model.AccountType(record[colType]),
	}
	if acct.Code == "" {
		return model.Account{}, fmt.Errorf("account %q has no code", acct.ID)
	}
	if !acct.Type.Valid() {
		return model.Account{}, fmt.Errorf("account %s: unknown type %q", acct.Code, record[colType])
	}

	balances := []struct {
		col int
		dst *decimal.Decimal
	}{
		{colOpeningDebit, &acct.OpeningDebit},
		{colOpeningCredit, &acct.OpeningCredit},
		{colClosingDebit, &acct.ClosingDebit},
		{colClosingCredit, &acct.ClosingCredit},
	}
	for _, b := range balances {
		v, err := parseBalance(record[b.col])
		if err != nil {
			return model.Account{}, fmt.Errorf("account %s, %s: %w", acct.Code, Header[b.col], err)
		}
		*b.dst = v
	}
	return acct, nil
}

func formatBalance(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func parseBalance(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative balance %s", s)
	}
	return d, nil
}
