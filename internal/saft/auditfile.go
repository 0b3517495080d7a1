// Package saft defines the SAF-T audit-file document and its XML encoding.
//
// Field order in the structs below is element order on the wire. Monetary
// and date leaves are kept as strings so a parsed document can be checked
// for the exact text it carried.
package saft

import "encoding/xml"

// Namespace is the default namespace of the root element.
const Namespace = "mfp:anaf:dgti:d406:declaratie:v1"

// RootElement is the local name of the root element.
const RootElement = "AuditFile"

// Top-level section names, in required order.
var TopLevelSections = []string{"Header", "MasterFiles", "SourceDocuments", "GeneralLedgerEntries"}

// AuditFile is the root of the document.
type AuditFile struct {
	XMLName              xml.Name
	Header               Header               `xml:"Header"`
	MasterFiles          MasterFiles          `xml:"MasterFiles"`
	SourceDocuments      *SourceDocuments     `xml:"SourceDocuments,omitempty"`
	GeneralLedgerEntries GeneralLedgerEntries `xml:"GeneralLedgerEntries"`
}

// Header carries file metadata and the reporting company.
type Header struct {
	AuditFileVersion     string            `xml:"AuditFileVersion"`
	AuditFileCountry     string            `xml:"AuditFileCountry"`
	AuditFileDateCreated string            `xml:"AuditFileDateCreated"`
	SoftwareCompanyName  string            `xml:"SoftwareCompanyName"`
	SoftwareID           string            `xml:"SoftwareID"`
	SoftwareVersion      string            `xml:"SoftwareVersion"`
	Company              Company           `xml:"Company"`
	DefaultCurrencyCode  string            `xml:"DefaultCurrencyCode"`
	SelectionCriteria    SelectionCriteria `xml:"SelectionCriteria"`
	HeaderComment        string            `xml:"HeaderComment,omitempty"`
	TaxAccountingBasis   string            `xml:"TaxAccountingBasis"`
}

type Company struct {
	RegistrationNumber string          `xml:"RegistrationNumber"`
	Name               string          `xml:"Name"`
	BusinessName       string          `xml:"BusinessName"`
	Address            Address         `xml:"Address"`
	Contact            Contact         `xml:"Contact"`
	TaxRegistration    TaxRegistration `xml:"TaxRegistration"`
	BankAccount        BankAccount     `xml:"BankAccount"`
}

type Address struct {
	StreetName string `xml:"StreetName,omitempty"`
	City       string `xml:"City"`
	PostalCode string `xml:"PostalCode,omitempty"`
	Country    string `xml:"Country"`
}

type Contact struct {
	ContactPerson ContactPerson `xml:"ContactPerson"`
	Telephone     string        `xml:"Telephone"`
	Email         string        `xml:"Email,omitempty"`
}

type ContactPerson struct {
	FirstName string `xml:"FirstName"`
	LastName  string `xml:"LastName"`
}

type TaxRegistration struct {
	TaxRegistrationNumber string `xml:"TaxRegistrationNumber"`
}

type BankAccount struct {
	IBANNumber        string `xml:"IBANNumber,omitempty"`
	BankAccountNumber string `xml:"BankAccountNumber,omitempty"`
	BankAccountName   string `xml:"BankAccountName"`
	SortCode          string `xml:"SortCode"`
}

// SelectionCriteria is the reporting period.
type SelectionCriteria struct {
	SelectionStartDate string `xml:"SelectionStartDate"`
	SelectionEndDate   string `xml:"SelectionEndDate"`
}

// MasterFiles holds the reference data that ledger lines point at.
type MasterFiles struct {
	GeneralLedgerAccounts *GeneralLedgerAccounts `xml:"GeneralLedgerAccounts,omitempty"`
	Customers             *Customers             `xml:"Customers,omitempty"`
	Suppliers             *Suppliers             `xml:"Suppliers,omitempty"`
	TaxTable              *TaxTable              `xml:"TaxTable,omitempty"`
	UOMTable              *UOMTable              `xml:"UOMTable,omitempty"`
	AnalysisTypeTable     *AnalysisTypeTable     `xml:"AnalysisTypeTable,omitempty"`
	Products              *Products              `xml:"Products,omitempty"`
}

type GeneralLedgerAccounts struct {
	Account []Account `xml:"Account"`
}

// Account is a chart-of-accounts entry with its period balances.
type Account struct {
	AccountID            string `xml:"AccountID"`
	AccountDescription   string `xml:"AccountDescription"`
	AccountType          string `xml:"AccountType"`
	OpeningDebitBalance  string `xml:"OpeningDebitBalance,omitempty"`
	OpeningCreditBalance string `xml:"OpeningCreditBalance,omitempty"`
	ClosingDebitBalance  string `xml:"ClosingDebitBalance,omitempty"`
	ClosingCreditBalance string `xml:"ClosingCreditBalance,omitempty"`
}

type Customers struct {
	Customer []Customer `xml:"Customer"`
}

type Customer struct {
	CompanyStructure CompanyStructure `xml:"CompanyStructure"`
	CustomerID       string           `xml:"CustomerID"`
	AccountID        string           `xml:"AccountID,omitempty"`
}

type Suppliers struct {
	Supplier []Supplier `xml:"Supplier"`
}

type Supplier struct {
	CompanyStructure CompanyStructure `xml:"CompanyStructure"`
	SupplierID       string           `xml:"SupplierID"`
	AccountID        string           `xml:"AccountID,omitempty"`
}

// CompanyStructure identifies a customer or supplier.
type CompanyStructure struct {
	RegistrationNumber string  `xml:"RegistrationNumber"`
	Name               string  `xml:"Name"`
	Address            Address `xml:"Address"`
}

type TaxTable struct {
	TaxTableEntry []TaxTableEntry `xml:"TaxTableEntry"`
}

type TaxTableEntry struct {
	TaxType       string `xml:"TaxType"`
	Description   string `xml:"Description"`
	TaxCode       string `xml:"TaxCode"`
	TaxPercentage string `xml:"TaxPercentage,omitempty"`
	Country       string `xml:"Country"`
}

type UOMTable struct {
	UOMTableEntry []UOMTableEntry `xml:"UOMTableEntry"`
}

type UOMTableEntry struct {
	UnitOfMeasure string `xml:"UnitOfMeasure"`
	Description   string `xml:"Description"`
}

type AnalysisTypeTable struct {
	AnalysisTypeTableEntry []AnalysisTypeTableEntry `xml:"AnalysisTypeTableEntry"`
}

type AnalysisTypeTableEntry struct {
	AnalysisType            string `xml:"AnalysisType"`
	AnalysisTypeDescription string `xml:"AnalysisTypeDescription"`
	AnalysisID              string `xml:"AnalysisID"`
	AnalysisIDDescription   string `xml:"AnalysisIDDescription"`
}

type Products struct {
	Product []Product `xml:"Product"`
}

type Product struct {
	ProductCode string `xml:"ProductCode"`
	Description string `xml:"Description"`
	UOMBase     string `xml:"UOMBase,omitempty"`
}

type SourceDocuments struct {
	SalesInvoices *SalesInvoices `xml:"SalesInvoices,omitempty"`
}

type SalesInvoices struct {
	NumberOfEntries string    `xml:"NumberOfEntries"`
	TotalDebit      string    `xml:"TotalDebit"`
	TotalCredit     string    `xml:"TotalCredit"`
	Invoice         []Invoice `xml:"Invoice"`
}

type Invoice struct {
	InvoiceNo      string         `xml:"InvoiceNo"`
	CustomerInfo   CustomerInfo   `xml:"CustomerInfo"`
	InvoiceDate    string         `xml:"InvoiceDate"`
	InvoiceType    string         `xml:"InvoiceType"`
	Line           []InvoiceLine  `xml:"Line"`
	DocumentTotals DocumentTotals `xml:"DocumentTotals"`
}

type CustomerInfo struct {
	CustomerID string `xml:"CustomerID"`
}

type InvoiceLine struct {
	LineNumber           string          `xml:"LineNumber"`
	ProductCode          string          `xml:"ProductCode"`
	Description          string          `xml:"Description"`
	Quantity             string          `xml:"Quantity"`
	UnitOfMeasure        string          `xml:"UnitOfMeasure,omitempty"`
	UnitPrice            string          `xml:"UnitPrice"`
	InvoiceLineAmount    Money           `xml:"InvoiceLineAmount"`
	DebitCreditIndicator string          `xml:"DebitCreditIndicator"`
	TaxInformation       *TaxInformation `xml:"TaxInformation,omitempty"`
}

type DocumentTotals struct {
	TaxPayable string `xml:"TaxPayable"`
	NetTotal   string `xml:"NetTotal"`
	GrossTotal string `xml:"GrossTotal"`
}

// GeneralLedgerEntries is the double-entry journal section.
type GeneralLedgerEntries struct {
	NumberOfEntries string    `xml:"NumberOfEntries"`
	TotalDebit      string    `xml:"TotalDebit"`
	TotalCredit     string    `xml:"TotalCredit"`
	Journal         []Journal `xml:"Journal"`
}

type Journal struct {
	JournalID   string        `xml:"JournalID"`
	Description string        `xml:"Description"`
	Type        string        `xml:"Type"`
	Transaction []Transaction `xml:"Transaction"`
}

// Transaction is one balanced ledger entry.
type Transaction struct {
	TransactionID   string `xml:"TransactionID"`
	Period          string `xml:"Period"`
	PeriodYear      string `xml:"PeriodYear"`
	TransactionDate string `xml:"TransactionDate"`
	Description     string `xml:"Description"`
	GLPostingDate   string `xml:"GLPostingDate"`
	CustomerID      string `xml:"CustomerID,omitempty"`
	SupplierID      string `xml:"SupplierID,omitempty"`
	Lines           []Line `xml:"Lines>Line"`
}

// Line is a single debit or credit leg.
type Line struct {
	RecordID         string          `xml:"RecordID"`
	AccountID        string          `xml:"AccountID"`
	SourceDocumentID string          `xml:"SourceDocumentID,omitempty"`
	CustomerID       string          `xml:"CustomerID,omitempty"`
	SupplierID       string          `xml:"SupplierID,omitempty"`
	Description      string          `xml:"Description"`
	DebitAmount      *Money          `xml:"DebitAmount,omitempty"`
	CreditAmount     *Money          `xml:"CreditAmount,omitempty"`
	TaxInformation   *TaxInformation `xml:"TaxInformation,omitempty"`
}

// Money is an amount with an optional currency.
type Money struct {
	Amount       string `xml:"Amount"`
	CurrencyCode string `xml:"CurrencyCode,omitempty"`
}

type TaxInformation struct {
	TaxType       string `xml:"TaxType"`
	TaxCode       string `xml:"TaxCode"`
	TaxPercentage string `xml:"TaxPercentage"`
	TaxBase       string `xml:"TaxBase"`
	TaxAmount     Money  `xml:"TaxAmount"`
}

// Transactions returns every transaction across all journals, in document order.
func (f *AuditFile) Transactions() []Transaction {
	var txns []Transaction
	for _, j := range f.GeneralLedgerEntries.Journal {
		txns = append(txns, j.Transaction...)
	}
	return txns
}
