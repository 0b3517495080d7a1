package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType is the document type code of a sales invoice.
type InvoiceType string

const (
	InvoiceTypeInvoice    InvoiceType = "FT"
	InvoiceTypeSimplified InvoiceType = "FS"
	InvoiceTypeReceipt    InvoiceType = "FR"
	InvoiceTypeDebitNote  InvoiceType = "ND"
	InvoiceTypeCreditNote InvoiceType = "NC"
)

// ApprovalStatus is the state reported by the upstream e-invoicing system.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Invoice is an issued sales invoice header.
type Invoice struct {
	ID             string
	Number         string
	Type           InvoiceType
	CustomerID     string // Party.ID
	IssueDate      time.Time
	DueDate        time.Time
	Currency       string
	Subtotal       decimal.Decimal
	VATAmount      decimal.Decimal
	Total          decimal.Decimal
	ApprovalStatus ApprovalStatus
	Notes          string
}

// InvoiceLine is one line item of an invoice.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal // percent, e.g. 19
	Unit        string
	Amount      decimal.Decimal // line net as recorded upstream; zero if not recorded
}
