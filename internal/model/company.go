package model

// Company is the tenant's own profile. It feeds the audit file header and
// is the issuer on outgoing invoices.
type Company struct {
	RegistrationNumber    string // CUI, used as CompanyID
	TaxRegistrationNumber string // VAT number, e.g. RO12345678
	TradeRegisterNumber   string // J40/1234/2020
	Name                  string
	BusinessName          string
	Street                string
	City                  string
	PostalCode            string
	Country               string
	ContactFirstName      string
	ContactLastName       string
	Telephone             string
	Email                 string
	IBAN                  string
	BankAccountNumber     string
	BankAccountName       string
	SortCode              string
	Currency              string
}
