package model

// PartyKind tells customers and suppliers apart.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
)

// Party is a customer or supplier master record.
type Party struct {
	ID             string
	Kind           PartyKind
	LegalName      string
	TaxID          string
	Address        string
	BillingCity    string
	BillingCountry string
}

// Ref returns the identifier the party is known by in the audit file.
// The national tax ID doubles as the customer/supplier ID; parties without
// one fall back to their internal ID.
func (p Party) Ref() string {
	if p.TaxID != "" {
		return p.TaxID
	}
	return p.ID
}
